package buildtool

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunFailsFastWhenBuildScriptMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(nil, Options{SourceDir: dir, DistDir: filepath.Join(dir, "dist")})
	if err == nil {
		t.Fatal("expected an error when no build script exists in SourceDir")
	}
}

func TestRunHonorsCustomBuildScriptName(t *testing.T) {
	dir := t.TempDir()
	// A default-named script is present, so only honoring BuildScriptName makes Run fail fast.
	if err := os.WriteFile(filepath.Join(dir, "setup.py"), []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Run(nil, Options{SourceDir: dir, DistDir: filepath.Join(dir, "dist"), BuildScriptName: "build.py"})
	if err == nil {
		t.Fatal("expected an error when the custom build script name is missing")
	}
}

func TestCollectArchivesListsFilesNotDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "demo-1.0-py3.egg"), []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "build"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	archives, err := collectArchives(dir)
	if err != nil {
		t.Fatalf("collectArchives: %v", err)
	}
	if len(archives) != 1 || filepath.Base(archives[0]) != "demo-1.0-py3.egg" {
		t.Fatalf("expected only the single archive file, got %v", archives)
	}
}

func TestCollectArchivesErrorsOnMissingDistDir(t *testing.T) {
	if _, err := collectArchives(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatal("expected an error reading a nonexistent dist dir")
	}
}
