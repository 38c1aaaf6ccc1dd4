package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"eggctl/src/internal/distribution"
)

func TestClassifyByExtension(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]Kind{
		"demo-1.0.whl":     BinaryArchive,
		"demo-1.0.egg":     BinaryArchive,
		"demo-1.0.tar.gz":  SourceArchive,
		"demo-1.0.tar.bz2": SourceArchive,
	}
	for name, want := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("irrelevant"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		got, err := Classify(path)
		if err != nil {
			t.Fatalf("Classify(%s): %v", name, err)
		}
		if got != want {
			t.Fatalf("Classify(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestClassifyDirectory(t *testing.T) {
	dir := t.TempDir()
	got, err := Classify(dir)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != Directory {
		t.Fatalf("expected Directory, got %v", got)
	}
}

func TestClassifySniffsMagicBytesWhenExtensionInconclusive(t *testing.T) {
	// A PK\x03\x04 zip local-file-header signature with no recognized suffix.
	path := filepath.Join(t.TempDir(), "downloaded-artifact")
	zipMagic := []byte{0x50, 0x4b, 0x03, 0x04}
	if err := os.WriteFile(path, zipMagic, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Classify(path)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != BinaryArchive {
		t.Fatalf("expected a zip-signature file with no suffix to classify as BinaryArchive, got %v", got)
	}
}

func TestKindString(t *testing.T) {
	if Directory.String() != "directory" || BinaryArchive.String() != "binary-archive" || SourceArchive.String() != "source-archive" {
		t.Fatalf("unexpected Kind.String values: %q %q %q", Directory.String(), BinaryArchive.String(), SourceArchive.String())
	}
}

func parseMeta(t *testing.T, text string) *distribution.PackageMetadata {
	t.Helper()
	meta, err := distribution.ParseMetadataReader(bytes.NewBufferString(text))
	if err != nil {
		t.Fatalf("ParseMetadataReader: %v", err)
	}
	return meta
}

func TestShouldUnzipWithNilMetadataDefaultsToUnzip(t *testing.T) {
	if !ShouldUnzip(nil, false) {
		t.Fatal("expected a nil Metadata to default to unzip")
	}
}

func TestShouldUnzipHonorsNotZipSafeMarker(t *testing.T) {
	meta := parseMeta(t, "Name: demo\nVersion: 1.0\nnot-zip-safe: 1\nzip-safe: \n")
	if !ShouldUnzip(meta, false) {
		t.Fatal("expected a not-zip-safe marker to force unzipping")
	}
}

func TestShouldUnzipSkipsWhenZipSafeDeclared(t *testing.T) {
	meta := parseMeta(t, "Name: demo\nVersion: 1.0\nzip-safe: \n")
	if ShouldUnzip(meta, false) {
		t.Fatal("expected an explicit zip-safe marker to skip unzipping")
	}
}

func TestShouldUnzipAlwaysUnzipOverrides(t *testing.T) {
	meta := parseMeta(t, "Name: demo\nVersion: 1.0\nzip-safe: \n")
	if !ShouldUnzip(meta, true) {
		t.Fatal("expected alwaysUnzip=true to force unzipping regardless of metadata")
	}
}

func TestCopyFileCopiesIntoDestDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "demo.whl")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	destDir := filepath.Join(t.TempDir(), "out")
	dst, err := CopyFile(src, destDir)
	if err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	body, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(body) != "payload" {
		t.Fatalf("expected copied contents to match, got %q", body)
	}
}

func TestCopyTreeCopiesRecursively(t *testing.T) {
	src := filepath.Join(t.TempDir(), "demo-1.0")
	if err := os.MkdirAll(filepath.Join(src, "pkg"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "pkg", "mod.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	destDir := filepath.Join(t.TempDir(), "out")
	dst, err := CopyTree(src, destDir)
	if err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	body, err := os.ReadFile(filepath.Join(dst, "pkg", "mod.py"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(body) != "x = 1\n" {
		t.Fatalf("expected recursively copied file contents, got %q", body)
	}
}
