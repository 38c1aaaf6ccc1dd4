// Package localindex implements the index.Client SPEC_FULL.md §4.2
// promises for file:// find-links directories: resolving a requirement
// directly from archive filenames on disk, with no network access at
// all, so the "file:// always permitted" rule of spec.md §4.2 has
// something that actually exercises it end to end rather than only
// being checked at the allow-list layer.
//
// The teacher never reads a local package index (it only ever talks
// to PyPI), so the filename parsing here follows the distribution
// naming convention zc.buildout's own find-links scanning
// (_examples/original_source/src/zc/buildout/easy_install.py's
// _listdir/is_distribution helpers) relies on: a project key, a dash,
// a version, then the archive's extension.
package localindex

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"eggctl/src/internal/cache"
	"eggctl/src/internal/distribution"
	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
)

var archiveExtensions = []string{".whl", ".egg", ".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".zip"}

// Client resolves requirements from a set of local directories,
// decoded from file:// find-links URLs.
type Client struct {
	Dirs []string
}

// New returns a Client scanning dirs (plain filesystem paths, not URLs).
func New(dirs []string) *Client {
	return &Client{Dirs: append([]string(nil), dirs...)}
}

// AddFindLinks accepts file:// URLs and appends their decoded paths;
// non-file:// URLs are silently ignored, since this Client never talks
// to the network.
func (c *Client) AddFindLinks(urls []string) {
	for _, u := range urls {
		if dir, ok := strings.CutPrefix(u, "file://"); ok {
			c.Dirs = append(c.Dirs, dir)
		}
	}
}

// Obtain scans every configured directory for the highest-version
// archive satisfying req.
func (c *Client) Obtain(ctx context.Context, req requirement.Requirement) (*distribution.Distribution, error) {
	var best *distribution.Distribution
	for _, dir := range c.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // an unreadable find-links directory contributes no candidates
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			key, verStr, ok := parseArchiveName(e.Name())
			if !ok || key != req.Key {
				continue
			}
			v := version.Parse(verStr)
			if !req.Satisfies(v) {
				continue
			}
			if best != nil && !v.GreaterThan(best.Version) {
				continue
			}
			d := distribution.Distribution{
				ProjectKey: key,
				Version:    v,
				Location:   "file://" + filepath.Join(dir, e.Name()),
				Precedence: precedenceOf(e.Name()),
			}
			best = &d
		}
	}
	return best, nil
}

// Download returns d's local path directly: a file:// source needs no
// content-addressed copy, per spec.md §4.2's "for file:// sources, may
// return the source path directly."
func (c *Client) Download(ctx context.Context, d distribution.Distribution, cas *cache.CAS) (string, error) {
	path := strings.TrimPrefix(d.Location, "file://")
	if path == "" {
		return "", os.ErrInvalid
	}
	return path, nil
}

func precedenceOf(name string) distribution.Precedence {
	if strings.HasSuffix(name, ".whl") {
		return distribution.BinaryArchive
	}
	return distribution.SourceArchive
}

// parseArchiveName splits a distribution archive's filename into its
// project key and version string: the first "-"-delimited segment
// after the leading one whose first rune is a digit starts the
// version, everything before it is the key.
func parseArchiveName(name string) (key, ver string, ok bool) {
	base := name
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	if base == name {
		return "", "", false // unrecognized extension
	}
	parts := strings.Split(base, "-")
	if len(parts) < 2 {
		return "", "", false
	}
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" && parts[i][0] >= '0' && parts[i][0] <= '9' {
			return requirement.NormalizeProjectKey(strings.Join(parts[:i], "-")), parts[i], true
		}
	}
	return "", "", false
}
