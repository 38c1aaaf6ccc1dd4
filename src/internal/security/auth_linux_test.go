//go:build !windows

package security

import (
	"path/filepath"
	"testing"
)

func TestSaveThenLookupRoundTrips(t *testing.T) {
	s := &platformStore{path: filepath.Join(t.TempDir(), "credentials.json")}
	if err := s.Save("pypi.org", "tok-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok := s.Lookup("pypi.org")
	if !ok || got != "tok-123" {
		t.Fatalf("expected the saved token to round-trip, got %q ok=%v", got, ok)
	}
}

func TestLookupMissesForUnknownHost(t *testing.T) {
	s := &platformStore{path: filepath.Join(t.TempDir(), "credentials.json")}
	if _, ok := s.Lookup("unknown.example"); ok {
		t.Fatal("expected no token for an unknown host")
	}
}

func TestRevokeRemovesTheEntry(t *testing.T) {
	s := &platformStore{path: filepath.Join(t.TempDir(), "credentials.json")}
	if err := s.Save("pypi.org", "tok-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Revoke("pypi.org"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, ok := s.Lookup("pypi.org"); ok {
		t.Fatal("expected the token to be gone after Revoke")
	}
}

func TestSaveOverwritesExistingToken(t *testing.T) {
	s := &platformStore{path: filepath.Join(t.TempDir(), "credentials.json")}
	if err := s.Save("pypi.org", "first"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("pypi.org", "second"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := s.Lookup("pypi.org")
	if got != "second" {
		t.Fatalf("expected the second Save to overwrite, got %q", got)
	}
}

func TestTokenStoreLookupRejectsEmptyHost(t *testing.T) {
	ts := &TokenStore{backend: &platformStore{path: filepath.Join(t.TempDir(), "credentials.json")}}
	if _, ok := ts.Lookup(""); ok {
		t.Fatal("expected TokenStore.Lookup(\"\") to short-circuit to false")
	}
}
