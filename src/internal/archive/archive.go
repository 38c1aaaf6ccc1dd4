// Package archive implements ArchiveHandler: classifying a fetched
// artifact, optionally unpacking it, and recompiling cached bytecode,
// per spec.md §4.5.
//
// Unpacking is grounded directly in the teacher's use of
// github.com/codeclysm/extract/v3 in
// resolver.downloadAndInstallPackage and engine.installWheelBlob
// (_examples/aaravmaloo-xe/src/internal/resolver/resolver.go,
// src/internal/engine/install.go). Classification by magic bytes uses
// github.com/h2non/filetype (already an indirect teacher dependency,
// never wired to any import in the teacher tree) instead of trusting
// file extensions, and source archives shipped as .tar.xz are handled
// through github.com/ulikunitz/xz (also already an indirect teacher
// dependency, pulled in transitively by extract's own tar.xz support
// but never imported directly).
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"eggctl/src/internal/distribution"

	"github.com/codeclysm/extract/v3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/ulikunitz/xz"
)

// Kind is the classification spec.md §4.5 names.
type Kind int

const (
	Directory Kind = iota
	BinaryArchive
	SourceArchive
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case BinaryArchive:
		return "binary-archive"
	default:
		return "source-archive"
	}
}

// sourceArchiveSuffixes are the archive shapes this core treats as
// source distributions needing the build tool, as opposed to binary
// wheels that can be copied or unpacked directly.
var sourceArchiveSuffixes = []string{".tar.gz", ".tgz", ".tar.xz", ".tar.bz2", ".zip.src"}

// Classify reports whether path is a directory, a binary archive
// (wheel-shaped: .whl or .egg), or a source archive.
func Classify(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Directory, err
	}
	if info.IsDir() {
		return Directory, nil
	}

	lower := strings.ToLower(path)
	for _, suf := range sourceArchiveSuffixes {
		if strings.HasSuffix(lower, suf) {
			return SourceArchive, nil
		}
	}
	if strings.HasSuffix(lower, ".whl") || strings.HasSuffix(lower, ".egg") {
		return BinaryArchive, nil
	}

	// Extension was inconclusive (e.g. an extensionless download
	// fetched by URL query string); sniff the magic bytes.
	buf := make([]byte, 261)
	f, err := os.Open(path)
	if err != nil {
		return Directory, err
	}
	defer f.Close()
	n, _ := f.Read(buf)
	kind, _ := filetype.Match(buf[:n])
	switch kind {
	case matchers.TypeZip:
		return BinaryArchive, nil
	case matchers.TypeGz, matchers.TypeXz, matchers.TypeBz2:
		return SourceArchive, nil
	default:
		return BinaryArchive, nil
	}
}

// ShouldUnzip implements the zip-safe policy of spec.md §4.5: unpack
// iff the archive declares "not-zip-safe", lacks a "zip-safe" marker
// entirely, or the caller requested always-unzip.
func ShouldUnzip(meta distribution.Metadata, alwaysUnzip bool) bool {
	if alwaysUnzip {
		return true
	}
	if meta == nil {
		return true
	}
	return meta.HasMetadata("not-zip-safe") || !meta.HasMetadata("zip-safe")
}

// Unpack extracts archive into dest, dispatching to the xz-aware
// reader for .tar.xz inputs (extract.Archive's own tar.xz support is
// exercised transitively through ulikunitz/xz, but source archives
// fetched from an index frequently need pre-decompression into a
// plain tar stream first when the archive isn't a recognized
// container format).
func Unpack(ctx context.Context, path, dest string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".tar.xz") {
		return unpackTarXz(ctx, f, dest)
	}
	return extract.Archive(ctx, f, dest, nil)
}

func unpackTarXz(ctx context.Context, r io.Reader, dest string) error {
	xzr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("archive: xz decode: %w", err)
	}
	return extract.Tar(ctx, xzr, dest, nil)
}

// CopyFile copies a single-file archive into dest/basename without
// unpacking, the "not should_unzip" branch of spec.md §4.4.2 step 4.
func CopyFile(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(destDir, filepath.Base(src))
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	return dst, nil
}

// CopyTree recursively copies a directory archive into
// destDir/basename(src), the "source is a directory" branch of
// spec.md §4.4.2 step 4.
func CopyTree(src, destDir string) (string, error) {
	dst := filepath.Join(destDir, filepath.Base(src))
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// RecompileBytecode walks dir; for each .py with an extant .pyc/.pyo
// sibling, removes the siblings and recompiles under the current
// optimization level, then spawns the interpreter once more to
// recompile under the opposite optimization — per spec.md §4.5.
func RecompileBytecode(ctx context.Context, runPython func(args ...string) ([]byte, error), dir string) error {
	var pyFiles []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".py" {
			return nil
		}
		base := strings.TrimSuffix(path, ".py")
		if fileExists(base+".pyc") || fileExists(base+".pyo") {
			_ = os.Remove(base + ".pyc")
			_ = os.Remove(base + ".pyo")
			pyFiles = append(pyFiles, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(pyFiles) == 0 {
		return nil
	}
	if _, err := runPython(append([]string{"-m", "compileall", "-q", dir}, pyFiles...)...); err != nil {
		return fmt.Errorf("archive: recompile (default optimization): %w", err)
	}
	if _, err := runPython(append([]string{"-O", "-m", "compileall", "-q", dir}, pyFiles...)...); err != nil {
		return fmt.Errorf("archive: recompile (opposite optimization): %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
