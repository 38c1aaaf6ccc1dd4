// Package distribution implements the Distribution data model: a
// versioned, installable artifact with a precedence rank and a narrow
// metadata interface, plus the tagged-union-shaped Kind that drives
// per-kind materialization (copy a directory, unpack-or-copy a binary
// archive, hand a source tree to the build tool).
//
// Metadata parsing is grounded in the teacher's
// resolver.ParseMetadataFile (_examples/aaravmaloo-xe/src/internal/resolver/metadata.go),
// generalized from an ad hoc struct into the DistMetadata trait spec.md
// §9 calls for.
package distribution

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
)

// Precedence ranks Distribution candidates when versions tie, per
// spec.md §3: DEVELOP > BINARY-ARCHIVE > SOURCE-ARCHIVE > CHECKOUT.
type Precedence int

const (
	Checkout Precedence = iota
	SourceArchive
	BinaryArchive
	Develop
)

func (p Precedence) String() string {
	switch p {
	case Develop:
		return "develop"
	case BinaryArchive:
		return "binary-archive"
	case SourceArchive:
		return "source-archive"
	default:
		return "checkout"
	}
}

// Metadata is the narrow trait spec.md §9 asks for in place of
// duck-typed has_metadata/get_metadata_lines.
type Metadata interface {
	HasMetadata(name string) bool
	MetadataLines(name string) ([]string, error)
	Requires(extras []string) []requirement.Requirement
	NamespacePackages() []string
}

// Distribution is one resolvable, installable artifact.
type Distribution struct {
	ProjectKey string
	Version    version.Version
	Location   string // filesystem path or remote URL
	Precedence Precedence
	Metadata   Metadata
	SHA256     string // content hash, when known; populated after acquisition
}

// ConflictsWith reports whether r constrains the same project key but
// this distribution's version does not satisfy it — the condition
// Environment.best_match and the resolver's BFS use to raise
// VersionConflict.
func (d Distribution) ConflictsWith(r requirement.Requirement) bool {
	return d.ProjectKey == r.Key && !r.Satisfies(d.Version)
}

// PackageMetadata is a Metadata implementation backed by a parsed
// .dist-info/METADATA file, mirroring the teacher's PackageMetadata
// struct field-for-field.
type PackageMetadata struct {
	Name        string
	Version     string
	Summary     string
	HomePage    string
	Author      string
	AuthorEmail string
	License     string
	Location    string
	RequiresRaw []string
	Namespaces  []string
	lines       map[string][]string
}

func (m *PackageMetadata) HasMetadata(name string) bool {
	_, ok := m.lines[name]
	return ok
}

func (m *PackageMetadata) MetadataLines(name string) ([]string, error) {
	lines, ok := m.lines[name]
	if !ok {
		return nil, fmt.Errorf("distribution: no %s metadata for %s", name, m.Name)
	}
	return lines, nil
}

func (m *PackageMetadata) NamespacePackages() []string { return m.Namespaces }

func (m *PackageMetadata) Requires(extras []string) []requirement.Requirement {
	wanted := make(map[string]bool, len(extras))
	for _, e := range extras {
		wanted[strings.ToLower(e)] = true
	}
	var out []requirement.Requirement
	for _, raw := range m.RequiresRaw {
		dep, forExtra := splitEnvironmentMarker(raw)
		if forExtra != "" && !wanted[strings.ToLower(forExtra)] {
			continue
		}
		req, err := requirement.Parse(dep)
		if err != nil {
			continue
		}
		out = append(out, req)
	}
	return out
}

// splitEnvironmentMarker extracts a simple `; extra == "name"` marker
// from a Requires-Dist line, the only marker shape this core
// understands (full PEP508 environment markers are out of scope).
func splitEnvironmentMarker(raw string) (dep string, extra string) {
	idx := strings.Index(raw, ";")
	if idx < 0 {
		return strings.TrimSpace(raw), ""
	}
	dep = strings.TrimSpace(raw[:idx])
	marker := raw[idx+1:]
	if i := strings.Index(marker, "extra"); i >= 0 {
		rest := marker[i:]
		if q := strings.IndexAny(rest, `"'`); q >= 0 {
			rest = rest[q+1:]
			if q2 := strings.IndexAny(rest, `"'`); q2 >= 0 {
				extra = rest[:q2]
			}
		}
	}
	return dep, extra
}

// ParseMetadataFile reads a PEP 566-shaped METADATA file into a
// PackageMetadata, matching the teacher's ParseMetadataFile line for
// line except for generalizing the single Requires-Dist field into
// the full Metadata trait (namespace packages, arbitrary metadata
// line groups).
func ParseMetadataFile(path string) (*PackageMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseMetadataReader(file)
}

// ParseMetadataReader parses a METADATA file from an already-open
// reader, letting callers scan through an afero.Fs or any other
// virtual filesystem instead of the real one.
func ParseMetadataReader(r io.Reader) (*PackageMetadata, error) {
	meta := &PackageMetadata{lines: map[string][]string{}}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ": ", 2)
		if len(parts) < 2 {
			continue
		}
		key, value := parts[0], parts[1]
		meta.lines[key] = append(meta.lines[key], value)
		switch key {
		case "Name":
			meta.Name = value
		case "Version":
			meta.Version = value
		case "Summary":
			meta.Summary = value
		case "Author":
			meta.Author = value
		case "Author-email":
			meta.AuthorEmail = value
		case "License":
			meta.License = value
		case "Home-page":
			meta.HomePage = value
		case "Requires-Dist":
			meta.RequiresRaw = append(meta.RequiresRaw, value)
		case "Namespace-Packages", "Provides-Namespace":
			meta.Namespaces = append(meta.Namespaces, value)
		}
	}
	return meta, scanner.Err()
}

// SortBestToWorst orders distributions (version DESC, precedence DESC),
// the order Environment keys each project onto per spec.md §3.
func SortBestToWorst(dists []Distribution) {
	sort.SliceStable(dists, func(i, j int) bool {
		if c := dists[j].Version.Compare(dists[i].Version); c != 0 {
			return c < 0
		}
		return dists[i].Precedence > dists[j].Precedence
	})
}
