package venv

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPythonExeMatchesPlatformLayout(t *testing.T) {
	got := PythonExe("/envs/demo")
	var want string
	if runtime.GOOS == "windows" {
		want = filepath.Join("/envs/demo", "Scripts", "python.exe")
	} else {
		want = filepath.Join("/envs/demo", "bin", "python")
	}
	if got != want {
		t.Fatalf("PythonExe = %q, want %q", got, want)
	}
}

func TestSitePackagesDirMatchesPlatformLayout(t *testing.T) {
	got := SitePackagesDir("/envs/demo", "3.12")
	var want string
	if runtime.GOOS == "windows" {
		want = filepath.Join("/envs/demo", "Lib", "site-packages")
	} else {
		want = filepath.Join("/envs/demo", "lib", "python3.12", "site-packages")
	}
	if got != want {
		t.Fatalf("SitePackagesDir = %q, want %q", got, want)
	}
}

func TestActivateScriptMatchesPlatformLayout(t *testing.T) {
	got := ActivateScript("/envs/demo")
	var want string
	if runtime.GOOS == "windows" {
		want = filepath.Join("/envs/demo", "Scripts", "activate.bat")
	} else {
		want = filepath.Join("/envs/demo", "bin", "activate")
	}
	if got != want {
		t.Fatalf("ActivateScript = %q, want %q", got, want)
	}
}

func TestExistsReflectsPythonExePresence(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Fatal("expected a freshly created empty dir not to already contain a venv")
	}

	exe := PythonExe(dir)
	if err := os.MkdirAll(filepath.Dir(exe), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(exe, []byte(""), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !Exists(dir) {
		t.Fatal("expected Exists to report true once the interpreter executable is present")
	}
}

func TestCreateRefusesAnExistingPath(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "python3"); err == nil {
		t.Fatal("expected Create to refuse a path that already exists")
	}
}

func TestDeleteRequiresAPath(t *testing.T) {
	if err := Delete(""); err == nil {
		t.Fatal("expected Delete(\"\") to be rejected")
	}
}

func TestDeleteRemovesTheVenvDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "venv")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := Delete(target); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("expected the venv directory to be removed")
	}
}

func TestEffectivePythonPathPrefersActiveVenv(t *testing.T) {
	t.Setenv("VIRTUAL_ENV", "/active/venv")
	if got := EffectivePythonPath("/default"); got != "/active/venv" {
		t.Fatalf("expected the active venv to take precedence, got %q", got)
	}
}

func TestEffectivePythonPathFallsBackWhenNoVenvActive(t *testing.T) {
	t.Setenv("VIRTUAL_ENV", "")
	if got := EffectivePythonPath("/default"); got != "/default" {
		t.Fatalf("expected the default path when no venv is active, got %q", got)
	}
}
