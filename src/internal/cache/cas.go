// Package cache implements the DownloadCache of spec.md §3: a
// content-addressed blob store keyed by sha256, plus a small
// key/value solution cache the Resolver uses to skip re-resolution
// when the same (interpreter, requirement-set) pair was solved
// before.
//
// Adapted from the teacher's cache.CAS
// (_examples/aaravmaloo-xe/src/internal/cache/cas.go), generalized
// from the teacher's flat resolver.Package/engine.SolveGraph types to
// this core's distribution/workingset types, with the teacher's
// silent io.Copy replaced by a download progress bar
// (github.com/schollz/progressbar/v3 — already a teacher dependency,
// previously wired only via cmd's install-step spinner, never for the
// underlying byte transfer itself).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"eggctl/src/internal/telemetry"

	"github.com/schollz/progressbar/v3"
)

// CAS is a content-addressed store rooted at a directory: blobs live
// under cas/blobs/<sha-prefix>/<sha>.archive, resolver solutions live
// under cas/solutions/<key>.json.
type CAS struct {
	Root         string
	ShowProgress bool
}

// SolutionKey derives a stable cache key for a resolved requirement
// set under a given interpreter tag, used to memoize Resolver.Resolve
// results per spec.md §4.4's "solution cache" note in §9.
func SolutionKey(interpreterTag string, requirementSpecs []string) string {
	sorted := append([]string(nil), requirementSpecs...)
	sort.Strings(sorted)
	h := sha256.New()
	h.Write([]byte(interpreterTag))
	for _, r := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(r))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func New(root string) (*CAS, error) {
	c := &CAS{Root: root}
	if err := os.MkdirAll(c.blobDir(), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.solutionDir(), 0755); err != nil {
		return nil, err
	}
	return c, nil
}

// Contains reports whether path resolves into this store's blob
// directory — the DownloadCache membership test the resolver's
// fetch step consults before re-downloading an already-cached
// artifact.
func (c *CAS) Contains(path string) bool {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		real = path
	}
	return strings.HasPrefix(filepath.Dir(real), c.blobDir())
}

func (c *CAS) StoreBlobFromURL(url, expectedSha256 string) (string, error) {
	done := telemetry.StartSpan("cas.store_blob", "url", url)
	if expectedSha256 != "" {
		target := c.blobPath(expectedSha256)
		if _, err := os.Stat(target); err == nil {
			done("status", "ok", "cache_hit", true)
			return target, nil
		}
	}

	downloadDone := telemetry.StartSpan("cas.download", "url", url)
	resp, err := http.Get(url)
	if err != nil {
		downloadDone("status", "error", "error", err.Error())
		done("status", "error", "error", err.Error())
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		downloadDone("status", "error", "status", resp.Status)
		err = fmt.Errorf("download failed: %s", resp.Status)
		done("status", "error", "error", err.Error())
		return "", err
	}

	tmp, err := os.CreateTemp(c.Root, "eggctl-download-*")
	if err != nil {
		downloadDone("status", "error", "error", err.Error())
		done("status", "error", "error", err.Error())
		return "", err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hash := sha256.New()
	var dst io.Writer = io.MultiWriter(tmp, hash)
	if c.ShowProgress && resp.ContentLength > 0 {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(url))
		dst = io.MultiWriter(dst, bar)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		tmp.Close()
		downloadDone("status", "error", "error", err.Error())
		done("status", "error", "error", err.Error())
		return "", err
	}
	downloadDone("status", "ok")
	if err := tmp.Close(); err != nil {
		done("status", "error", "error", err.Error())
		return "", err
	}

	actual := hex.EncodeToString(hash.Sum(nil))
	if expectedSha256 != "" && !strings.EqualFold(expectedSha256, actual) {
		err = fmt.Errorf("checksum mismatch: expected=%s actual=%s", expectedSha256, actual)
		done("status", "error", "error", err.Error())
		return "", err
	}

	target := c.blobPath(actual)
	if _, err := os.Stat(target); err == nil {
		done("status", "ok", "cache_hit", true)
		return target, nil
	}
	if err := os.Rename(tmpPath, target); err != nil {
		done("status", "error", "error", err.Error())
		return "", err
	}
	done("status", "ok", "cache_hit", false)
	return target, nil
}

func (c *CAS) SaveSolution(key string, value any) error {
	p := filepath.Join(c.solutionDir(), key+".json")
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(value)
}

func (c *CAS) LoadSolution(key string, out any) (bool, error) {
	p := filepath.Join(c.solutionDir(), key+".json")
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	return true, json.NewDecoder(f).Decode(out)
}

func (c *CAS) blobDir() string {
	return filepath.Join(c.Root, "cas", "blobs")
}

func (c *CAS) solutionDir() string {
	return filepath.Join(c.Root, "cas", "solutions")
}

func (c *CAS) blobPath(sha string) string {
	prefix := "00"
	if len(sha) >= 2 {
		prefix = sha[:2]
	}
	_ = os.MkdirAll(filepath.Join(c.blobDir(), prefix), 0755)
	return filepath.Join(c.blobDir(), prefix, sha+".archive")
}
