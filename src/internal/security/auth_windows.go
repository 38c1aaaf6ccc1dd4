//go:build windows

package security

import (
	"github.com/danieljoos/wincred"
)

// platformStore persists one Windows Credential Manager generic
// credential per index host, named "eggctl_token_<host>" — the same
// wincred usage as the teacher's single-token store
// (_examples/aaravmaloo-xe/src/internal/security/auth_windows.go),
// generalized from one fixed target name to one target per host.
type platformStore struct{}

func newPlatformStore() *platformStore { return &platformStore{} }

func credentialTarget(host string) string { return "eggctl_token_" + host }

func (s *platformStore) Lookup(host string) (string, bool) {
	cred, err := wincred.GetGenericCredential(credentialTarget(host))
	if err != nil {
		return "", false
	}
	return string(cred.CredentialBlob), true
}

func (s *platformStore) Save(host, token string) error {
	cred := wincred.NewGenericCredential(credentialTarget(host))
	cred.CredentialBlob = []byte(token)
	cred.Persist = wincred.PersistLocalMachine
	return cred.Write()
}

func (s *platformStore) Revoke(host string) error {
	cred, err := wincred.GetGenericCredential(credentialTarget(host))
	if err != nil {
		return err
	}
	return cred.Delete()
}
