// Package venv manages a single target virtual environment for an
// install/build/develop operation: creating it, and locating its
// interpreter executable and site-packages directory.
//
// Adapted from the teacher's venv.VenvManager
// (_examples/aaravmaloo-xe/src/internal/venv/manager.go), which kept a
// named registry of venvs under one global xe-managed directory; this
// core targets exactly one environment per operation, addressed by
// its own path (typically a project-local .venv), since spec.md's
// Resolver/Installer facade takes a target executable/path directly
// rather than a registry lookup (spec.md §6's install(...) signature).
// GetActiveVenv's VIRTUAL_ENV-detection is preserved, since a caller
// with no explicit target should still default to an active venv.
package venv

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ActiveVenv returns the currently-activated virtual environment root
// from $VIRTUAL_ENV, or "" if none is active.
func ActiveVenv() string {
	return os.Getenv("VIRTUAL_ENV")
}

// EffectivePythonPath returns the active venv's path if one is set,
// otherwise defaultPath.
func EffectivePythonPath(defaultPath string) string {
	if active := ActiveVenv(); active != "" {
		return active
	}
	return defaultPath
}

// Create provisions a new virtual environment at path using
// pythonExe, falling back to a pip-installed virtualenv when the
// interpreter's stdlib venv module is unavailable (some embeddable
// distributions omit it).
func Create(path, pythonExe string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("venv: %s already exists", path)
	}

	cmd := exec.Command(pythonExe, "-m", "venv", path)
	if err := cmd.Run(); err == nil {
		return nil
	}

	bootstrap := exec.Command(pythonExe, "-m", "pip", "install", "--disable-pip-version-check", "--no-warn-script-location", "--upgrade", "--force-reinstall", "virtualenv")
	bootstrap.Stdout = io.Discard
	bootstrap.Stderr = io.Discard
	if err := bootstrap.Run(); err != nil {
		return fmt.Errorf("venv: bootstrap virtualenv: %w", err)
	}

	fallback := exec.Command(pythonExe, "-m", "virtualenv", path)
	fallback.Stdout = io.Discard
	fallback.Stderr = io.Discard
	return fallback.Run()
}

// PythonExe returns the interpreter executable inside the venv rooted at path.
func PythonExe(path string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(path, "Scripts", "python.exe")
	}
	return filepath.Join(path, "bin", "python")
}

// SitePackagesDir returns the venv's site-packages directory. On
// POSIX this requires the interpreter's X.Y tag since CPython nests
// site-packages under lib/pythonX.Y; callers without that tag should
// prefer interpreterprobe.Probe.SitePaths against PythonExe(path) instead.
func SitePackagesDir(path, pythonTag string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(path, "Lib", "site-packages")
	}
	return filepath.Join(path, "lib", "python"+pythonTag, "site-packages")
}

// Exists reports whether a venv is already provisioned at path.
func Exists(path string) bool {
	_, err := os.Stat(PythonExe(path))
	return err == nil
}

// Delete removes the venv rooted at path.
func Delete(path string) error {
	if path == "" {
		return fmt.Errorf("venv: path required")
	}
	return os.RemoveAll(path)
}

// ActivateScript returns the shell activation script for the venv rooted at path.
func ActivateScript(path string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(path, "Scripts", "activate.bat")
	}
	return filepath.Join(path, "bin", "activate")
}
