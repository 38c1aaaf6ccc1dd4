// Package pinmap implements VersionPinMap: a caller-supplied mapping
// from project key to exact version that constrains every Requirement
// the resolver considers, per spec.md §3 and §4.4.1 step 1.
//
// Grounded in the teacher's project.Config.Deps map
// (_examples/aaravmaloo-xe/src/internal/project/config.go) and
// lockfile.Lockfile.Deps
// (_examples/aaravmaloo-xe/src/internal/lockfile/lockfile.go), which
// both already shape "project name -> version string"; this package
// gives that shape the Constrain/IncompatibleVersion semantics spec.md
// requires instead of leaving it as a bag of strings.
package pinmap

import (
	"fmt"

	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
)

// Map is an immutable VersionPinMap.
type Map struct {
	pins map[string]version.Version
}

// New builds a Map from project-key -> version-string pairs.
func New(raw map[string]string) Map {
	pins := make(map[string]version.Version, len(raw))
	for k, v := range raw {
		if v == "" || v == "*" {
			continue
		}
		pins[requirement.NormalizeProjectKey(k)] = version.Parse(v)
	}
	return Map{pins: pins}
}

// Lookup returns the pinned version for key, if any.
func (m Map) Lookup(key string) (version.Version, bool) {
	v, ok := m.pins[key]
	return v, ok
}

// IncompatibleVersionError is the fatal error spec.md §4.4.6 names for
// a pin map entry that contradicts a Requirement's own constraint.
type IncompatibleVersionError struct {
	Requirement requirement.Requirement
	Pinned      version.Version
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("pinmap: %s is pinned to %s, which does not satisfy %s",
		e.Requirement.Key, e.Pinned.String(), e.Requirement.String())
}

// Constrain applies the pin map to r: if a pin exists, r is narrowed
// to "== pinned" (extras preserved), failing with
// IncompatibleVersionError if the existing constraint rejects the pin.
// Requirements for unpinned keys pass through unchanged.
func (m Map) Constrain(r requirement.Requirement) (requirement.Requirement, error) {
	pinned, ok := m.Lookup(r.Key)
	if !ok {
		return r, nil
	}
	if !r.Satisfies(pinned) {
		return requirement.Requirement{}, &IncompatibleVersionError{Requirement: r, Pinned: pinned}
	}
	return r.WithExactVersion(pinned), nil
}
