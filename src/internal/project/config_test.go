package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateWritesDefaultManifestWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := LoadOrCreate(dir)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Fatalf("expected the manifest path to be %s, got %s", filepath.Join(dir, FileName), path)
	}
	if cfg.Python.Version != "3.12" {
		t.Fatalf("expected the default python version 3.12, got %q", cfg.Python.Version)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected the default manifest to be written to disk: %v", err)
	}
}

func TestLoadOrCreateReadsExistingManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	cfg := NewDefault(dir)
	cfg.Deps["demo"] = ">=1.0"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, gotPath, err := LoadOrCreate(dir)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if gotPath != path {
		t.Fatalf("expected path %s, got %s", path, gotPath)
	}
	if loaded.Deps["demo"] != ">=1.0" {
		t.Fatalf("expected the previously saved dep to round-trip, got %v", loaded.Deps)
	}
}

func TestLoadDefaultsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[project]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Python.Version != "3.12" {
		t.Fatalf("expected a defaulted python version, got %q", cfg.Python.Version)
	}
	if cfg.Cache.Mode != "global-cas" {
		t.Fatalf("expected a defaulted cache mode, got %q", cfg.Cache.Mode)
	}
	if cfg.Deps == nil {
		t.Fatal("expected Load to initialize a non-nil Deps map")
	}
}

func TestNormalizeDepNameFoldsCase(t *testing.T) {
	if NormalizeDepName("Demo_Package") != NormalizeDepName("demo-package") {
		t.Fatalf("expected NormalizeDepName to fold separators and case consistently")
	}
}
