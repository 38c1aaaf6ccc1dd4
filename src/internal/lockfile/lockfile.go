// Package lockfile persists a resolved WorkingSet so a later install
// can reproduce it exactly without re-resolving, the S7 scenario
// SPEC_FULL.md adds: "resolve once, lock the result, replay the lock
// byte-for-byte."
//
// Adapted from the teacher's lockfile.Lockfile
// (_examples/aaravmaloo-xe/src/internal/lockfile/lockfile.go), which
// already shaped "python/platform/toolchain header + deps map +
// hashes map" for a single resolved toolchain; this version replaces
// the flat Deps/Hashes maps with one Entry per project key carrying
// precedence and location, so a lock captures enough of a
// Distribution to skip Environment/IndexClient lookups entirely on
// replay.
package lockfile

import (
	"os"
	"sort"

	"eggctl/src/internal/distribution"

	"github.com/BurntSushi/toml"
)

// Entry is one locked Distribution.
type Entry struct {
	Version    string `toml:"version"`
	Precedence string `toml:"precedence"`
	Location   string `toml:"location"`
	SHA256     string `toml:"sha256"`
}

// Lockfile is the on-disk reproducible-resolution record.
type Lockfile struct {
	Python   PythonConfig     `toml:"python"`
	Platform PlatformConfig   `toml:"platform"`
	Deps     map[string]Entry `toml:"deps"`
}

// PythonConfig records the interpreter this lock was resolved against.
type PythonConfig struct {
	Version string `toml:"version"`
}

// PlatformConfig records the OS/arch this lock was resolved on.
type PlatformConfig struct {
	OS   string `toml:"os"`
	Arch string `toml:"arch"`
}

// FromDistributions builds a Lockfile entry set from a resolved
// working set's distributions, in the precedence-ranked order
// distribution.SortBestToWorst already establishes within each key.
func FromDistributions(pythonVersion, goos, goarch string, dists []distribution.Distribution) *Lockfile {
	deps := make(map[string]Entry, len(dists))
	for _, d := range dists {
		deps[d.ProjectKey] = Entry{
			Version:    d.Version.String(),
			Precedence: d.Precedence.String(),
			Location:   d.Location,
			SHA256:     d.SHA256,
		}
	}
	return &Lockfile{
		Python:   PythonConfig{Version: pythonVersion},
		Platform: PlatformConfig{OS: goos, Arch: goarch},
		Deps:     deps,
	}
}

// Keys returns the locked project keys in sorted order, for
// deterministic iteration (replay must be byte-for-byte reproducible,
// per SPEC_FULL.md S7).
func (l *Lockfile) Keys() []string {
	keys := make([]string, 0, len(l.Deps))
	for k := range l.Deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads a Lockfile from path.
func Load(path string) (*Lockfile, error) {
	var lock Lockfile
	_, err := toml.DecodeFile(path, &lock)
	if lock.Deps == nil {
		lock.Deps = map[string]Entry{}
	}
	return &lock, err
}

// Save writes l to path.
func (l *Lockfile) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(l)
}
