// Package appdir locates this core's on-disk state: a per-user home
// directory for global config/cache/credentials, and the
// DestinationLayout spec.md §6 names for a given project — eggs-dir,
// develop-eggs-dir, and bin-dir.
//
// Adapted from the teacher's xedir package
// (_examples/aaravmaloo-xe/src/internal/xedir/xedir.go), which only
// ever located a single global toolchain home; this core additionally
// needs a per-project layout rooted wherever the caller points it
// (typically a project's .eggctl directory), since installs are
// scoped to one target environment rather than one shared toolchain.
package appdir

import (
	"os"
	"path/filepath"
	"runtime"
)

// Home returns this tool's per-user state directory.
func Home() (string, error) {
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "eggctl"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Local", "eggctl"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "eggctl"), nil
}

// MustHome returns Home, falling back to a relative "eggctl" directory
// if the user's home cannot be located.
func MustHome() string {
	home, err := Home()
	if err != nil {
		return "eggctl"
	}
	return home
}

// ConfigFile is the global CLI configuration file viper reads/writes.
func ConfigFile() string { return filepath.Join(MustHome(), "config.yaml") }

// GlobalCacheDir is the shared download cache used when a project
// does not configure its own, per spec.md §6's download_cache knob.
func GlobalCacheDir() string { return filepath.Join(MustHome(), "cache") }

// CredentialsFile is the per-host index auth token store security.TokenStore persists to.
func CredentialsFile() string { return filepath.Join(MustHome(), "credentials.json") }

// ProfileDir is where telemetry sessions write their trace/cpu/heap files.
func ProfileDir() string { return filepath.Join(MustHome(), "profiles") }

// ShimDir holds global PATH shims installed by the CLI's "use"
// command, distinct from a project's own Layout.BinDir — a shim here
// forwards to whichever project-local interpreter or script is
// currently active.
func ShimDir() string { return filepath.Join(MustHome(), "bin") }

// EnsureHome creates the per-user state directory if absent.
func EnsureHome() error { return os.MkdirAll(MustHome(), 0o755) }

// Layout is the DestinationLayout spec.md §6 names: the three
// directories a resolved working set and its generated scripts are
// materialized into.
type Layout struct {
	Root string
}

// NewLayout roots a Layout at root (typically a project's .eggctl directory).
func NewLayout(root string) Layout { return Layout{Root: root} }

// EggsDir holds unpacked/copied binary-archive distributions.
func (l Layout) EggsDir() string { return filepath.Join(l.Root, "eggs") }

// DevelopEggsDir holds .egg-link files pointing at development source trees.
func (l Layout) DevelopEggsDir() string { return filepath.Join(l.Root, "develop-eggs") }

// BinDir holds generated entry-point scripts.
func (l Layout) BinDir() string { return filepath.Join(l.Root, "bin") }

// Ensure creates all three DestinationLayout directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.EggsDir(), l.DevelopEggsDir(), l.BinDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
