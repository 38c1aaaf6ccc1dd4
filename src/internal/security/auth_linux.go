//go:build !windows

package security

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"eggctl/src/internal/appdir"
)

// platformStore persists the host->token map as a JSON file under the
// app home directory, the same storage shape as the teacher's single
// credentials file (_examples/aaravmaloo-xe/src/internal/security/auth_linux.go)
// generalized from one flat token to a map keyed by index host.
type platformStore struct {
	mu   sync.Mutex
	path string
}

func newPlatformStore() *platformStore {
	return &platformStore{path: appdir.CredentialsFile()}
}

func (s *platformStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	tokens := map[string]string{}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *platformStore) save(tokens map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *platformStore) Lookup(host string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.load()
	if err != nil {
		return "", false
	}
	token, ok := tokens[host]
	return token, ok
}

func (s *platformStore) Save(host, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.load()
	if err != nil {
		tokens = map[string]string{}
	}
	tokens[host] = token
	return s.save(tokens)
}

func (s *platformStore) Revoke(host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.load()
	if err != nil {
		return err
	}
	delete(tokens, host)
	return s.save(tokens)
}
