package developinstall

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSoleLinkFileFindsTheOnlyEggLink(t *testing.T) {
	dir := t.TempDir()
	linkPath := filepath.Join(dir, "demo.egg-link")
	if err := os.WriteFile(linkPath, []byte("."), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := soleLinkFile(dir)
	if err != nil {
		t.Fatalf("soleLinkFile: %v", err)
	}
	if got != linkPath {
		t.Fatalf("expected %q, got %q", linkPath, got)
	}
}

func TestSoleLinkFileErrorsOnNone(t *testing.T) {
	dir := t.TempDir()
	if _, err := soleLinkFile(dir); err == nil {
		t.Fatal("expected an error when no .egg-link file is present")
	}
}

func TestSoleLinkFileErrorsOnMultiple(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.egg-link", "b.egg-link"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("."), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	if _, err := soleLinkFile(dir); err == nil {
		t.Fatal("expected an error when multiple .egg-link files are present")
	}
}

func TestRunFailsFastWhenBuildScriptMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(nil, Options{SourceDir: dir, DestDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected an error when no build script exists in SourceDir")
	}
}
