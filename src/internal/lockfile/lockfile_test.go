package lockfile

import (
	"path/filepath"
	"testing"

	"eggctl/src/internal/distribution"
	"eggctl/src/internal/version"
)

func TestFromDistributionsThenSaveLoadRoundTrips(t *testing.T) {
	dists := []distribution.Distribution{
		{ProjectKey: "demo", Version: version.Parse("1.0"), Precedence: distribution.Checkout, Location: "/eggs/demo-1.0", SHA256: "abc"},
		{ProjectKey: "other", Version: version.Parse("2.0"), Location: "/eggs/other-2.0"},
	}
	lock := FromDistributions("3.12.0", "linux", "amd64", dists)

	path := filepath.Join(t.TempDir(), "eggctl.lock")
	if err := lock.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Python.Version != "3.12.0" {
		t.Fatalf("expected python version to round-trip, got %q", loaded.Python.Version)
	}
	if loaded.Platform.OS != "linux" || loaded.Platform.Arch != "amd64" {
		t.Fatalf("expected platform to round-trip, got %+v", loaded.Platform)
	}
	entry, ok := loaded.Deps["demo"]
	if !ok {
		t.Fatal("expected a locked entry for demo")
	}
	if entry.Version != "1.0" || entry.Location != "/eggs/demo-1.0" || entry.SHA256 != "abc" {
		t.Fatalf("expected the demo entry fields to round-trip, got %+v", entry)
	}
}

func TestKeysAreSorted(t *testing.T) {
	lock := FromDistributions("3.12.0", "linux", "amd64", []distribution.Distribution{
		{ProjectKey: "zeta", Version: version.Parse("1.0")},
		{ProjectKey: "alpha", Version: version.Parse("1.0")},
	})
	keys := lock.Keys()
	if len(keys) != 2 || keys[0] != "alpha" || keys[1] != "zeta" {
		t.Fatalf("expected sorted keys [alpha zeta], got %v", keys)
	}
}

func TestLoadInitializesDepsOnEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.lock")
	empty := &Lockfile{}
	if err := empty.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Deps == nil {
		t.Fatal("expected Load to initialize a non-nil Deps map even when the file has none")
	}
}
