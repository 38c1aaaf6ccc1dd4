// Package environment implements Environment: an in-memory view of
// distributions reachable from a given path list, keyed by project
// name and sorted best-to-worst, per spec.md §3 and §4.3.
//
// Scanning is grounded in the teacher's
// resolver.ListInstalledPackages/findSitePackages
// (_examples/aaravmaloo-xe/src/internal/resolver/metadata.go), which
// walks a site-packages directory for "*.dist-info" entries. This
// version walks through an afero.Fs instead of the real os package, so
// the Resolver's tests can substitute afero.NewMemMapFs() — the
// teacher never needed this because it only ever scanned the real
// disk; a dependency-resolution core that must be property-tested
// does, which is why afero (already a teacher dependency via viper) is
// wired in directly.
package environment

import (
	"fmt"
	"path/filepath"
	"strings"

	"eggctl/src/internal/distribution"
	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
	"eggctl/src/internal/workingset"

	"github.com/spf13/afero"
)

// Environment indexes distributions reachable via a path list.
type Environment struct {
	fs            afero.Fs
	byKey         map[string][]distribution.Distribution
	sitePaths     map[string]bool
	interpreterTag string
}

// Scan builds an Environment from a path list (directories that may
// each contain "*.dist-info" or "*.egg-info" siblings) and an
// interpreter version tag used only for diagnostics.
func Scan(fs afero.Fs, paths []string, sitePaths []string, interpreterTag string) (*Environment, error) {
	env := &Environment{
		fs:             fs,
		byKey:          map[string][]distribution.Distribution{},
		sitePaths:      map[string]bool{},
		interpreterTag: interpreterTag,
	}
	for _, sp := range sitePaths {
		env.sitePaths[filepath.Clean(sp)] = true
	}
	for _, p := range paths {
		if err := env.scanOne(p); err != nil {
			return nil, err
		}
	}
	for key := range env.byKey {
		distribution.SortBestToWorst(env.byKey[key])
	}
	return env, nil
}

func (e *Environment) scanOne(path string) error {
	entries, err := afero.ReadDir(e.fs, path)
	if err != nil {
		return nil // a missing/unreadable path contributes no distributions
	}
	for _, entry := range entries {
		name := entry.Name()
		lower := strings.ToLower(name)
		var metaFile string
		switch {
		case strings.HasSuffix(lower, ".dist-info"):
			metaFile = "METADATA"
		case strings.HasSuffix(lower, ".egg-info"):
			metaFile = "PKG-INFO"
		}
		if !entry.IsDir() || metaFile == "" {
			continue
		}
		metaPath := filepath.Join(path, name, metaFile)
		meta, err := readMetadata(e.fs, metaPath)
		if err != nil {
			continue
		}
		key := requirement.NormalizeProjectKey(meta.Name)
		d := distribution.Distribution{
			ProjectKey: key,
			Version:    version.Parse(meta.Version),
			Location:   filepath.Join(path, name),
			Precedence: distribution.BinaryArchive,
			Metadata:   meta,
		}
		e.byKey[key] = append(e.byKey[key], d)
	}
	return nil
}

func readMetadata(fs afero.Fs, path string) (*distribution.PackageMetadata, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return distribution.ParseMetadataReader(f)
}

// IsSitePath reports whether loc lies inside one of the interpreter's
// site paths — the check spec.md §4.4.4's site-package filter applies.
func (e *Environment) IsSitePath(loc string) bool {
	loc = filepath.Clean(loc)
	for sp := range e.sitePaths {
		if loc == sp || strings.HasPrefix(loc, sp+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Candidates returns all known distributions for key, best first.
func (e *Environment) Candidates(key string) []distribution.Distribution {
	return append([]distribution.Distribution(nil), e.byKey[key]...)
}

// KnownKeys returns every project key this Environment has at least
// one candidate for, in no particular order — the search space for
// MissingDistributionError's fuzzy "did you mean" suggestion.
func (e *Environment) KnownKeys() []string {
	keys := make([]string, 0, len(e.byKey))
	for k := range e.byKey {
		keys = append(keys, k)
	}
	return keys
}

// VersionConflictError is raised by BestMatch when the only
// available candidate conflicts with the working set, per spec.md
// §4.3.
type VersionConflictError struct {
	Requirement requirement.Requirement
	Conflicting distribution.Distribution
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("environment: %s conflicts with installed %s %s",
		e.Requirement.String(), e.Conflicting.ProjectKey, e.Conflicting.Version.String())
}

// BestMatch returns the highest-version distribution satisfying req
// that does not conflict with ws, or nil if none exists. It raises
// VersionConflictError when the only local candidate for the key
// conflicts with an entry already in ws, per spec.md §4.3.
func (e *Environment) BestMatch(req requirement.Requirement, ws *workingset.WorkingSet) (*distribution.Distribution, error) {
	candidates := e.byKey[req.Key]
	if len(candidates) == 0 {
		return nil, nil
	}
	var onlyConflicting *distribution.Distribution
	for i := range candidates {
		c := candidates[i]
		if !req.Satisfies(c.Version) {
			continue
		}
		if conflict, has := ws.Conflicts(req); has {
			if onlyConflicting == nil {
				cc := conflict
				onlyConflicting = &cc
			}
			continue
		}
		return &c, nil
	}
	if onlyConflicting != nil {
		return nil, &VersionConflictError{Requirement: req, Conflicting: *onlyConflicting}
	}
	return nil, nil
}
