package installer

import (
	"context"
	"testing"

	"eggctl/src/internal/appdir"
	"eggctl/src/internal/cache"
	"eggctl/src/internal/config"
	"eggctl/src/internal/distribution"
	"eggctl/src/internal/index"
	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
	"eggctl/src/internal/workingset"

	"github.com/spf13/afero"
)

// fakeIndex never finds a remote candidate; Install's cache-hit and
// local-satisfaction paths never need one.
type fakeIndex struct{}

func (fakeIndex) Obtain(ctx context.Context, req requirement.Requirement) (*distribution.Distribution, error) {
	return nil, nil
}

func (fakeIndex) Download(ctx context.Context, d distribution.Distribution, cas *cache.CAS) (string, error) {
	return "", nil
}

func (fakeIndex) AddFindLinks(urls []string) {}

func TestInstallShortCircuitsOnSolutionCacheHit(t *testing.T) {
	root := t.TempDir()
	cas, err := cache.New(root)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	specs := []string{"demo>=1.0"}
	key := cache.SolutionKey("cp312", specs)
	seeded := cachedGraph{
		InterpreterTag: "cp312",
		Specs:          specs,
		Packages:       []distribution.Distribution{{ProjectKey: "demo", Version: version.Parse("1.0")}},
	}
	if err := cas.SaveSolution(key, seeded); err != nil {
		t.Fatalf("SaveSolution: %v", err)
	}

	opts := config.Default()
	opts.InstallFromCache = true

	layout := appdir.NewLayout(t.TempDir())
	in := New(cas, fakeIndex{}, nil, layout, opts, "cp312", nil, nil)

	ws, err := in.Install(context.Background(), afero.NewMemMapFs(), specs, InstallOptions{})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	d, ok := ws.Get("demo")
	if !ok || d.Version.String() != "1.0" {
		t.Fatalf("expected the cached solution's demo 1.0 to be returned without resolving, got %+v ok=%v", d, ok)
	}
}

func TestInstallResolvesLocallyOnCacheMiss(t *testing.T) {
	root := t.TempDir()
	cas, err := cache.New(root)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	fs := afero.NewMemMapFs()
	layout := appdir.NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	distInfo := layout.EggsDir() + "/demo-1.0.dist-info"
	content := "Name: demo\nVersion: 1.0\n"
	if err := afero.WriteFile(fs, distInfo+"/METADATA", []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := config.Default()
	opts.Newest = false
	in := New(cas, fakeIndex{}, nil, layout, opts, "cp312", nil, nil)

	ws, err := in.Install(context.Background(), fs, []string{"demo>=1.0"}, InstallOptions{})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	d, ok := ws.Get("demo")
	if !ok || d.Version.String() != "1.0" {
		t.Fatalf("expected demo 1.0 resolved from the eggs-dir, got %+v ok=%v", d, ok)
	}
}

func TestInstallSeedsIncrementalExpansionFromProvidedWorkingSet(t *testing.T) {
	root := t.TempDir()
	cas, err := cache.New(root)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	fs := afero.NewMemMapFs()
	layout := appdir.NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	distInfo := layout.EggsDir() + "/other-1.0.dist-info"
	content := "Name: other\nVersion: 1.0\n"
	if err := afero.WriteFile(fs, distInfo+"/METADATA", []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	opts := config.Default()
	opts.Newest = false
	in := New(cas, fakeIndex{}, nil, layout, opts, "cp312", nil, nil)

	seed := workingset.FromSlice([]distribution.Distribution{{ProjectKey: "demo", Version: version.Parse("1.0")}})
	ws, err := in.Install(context.Background(), fs, []string{"other>=1.0"}, InstallOptions{WorkingSet: seed})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, ok := ws.Get("demo"); !ok {
		t.Fatal("expected the seeded working set's demo entry to survive incremental expansion")
	}
	if _, ok := ws.Get("other"); !ok {
		t.Fatal("expected other to be newly resolved alongside the seeded demo entry")
	}
}

func TestIndexForReturnsBaseIndexWithoutOverrides(t *testing.T) {
	base := fakeIndex{}
	in := New(nil, base, nil, appdir.Layout{}, config.Default(), "cp312", nil, nil)
	if got := in.indexFor(InstallOptions{}); got != index.Client(base) {
		t.Fatal("expected indexFor to return the Installer's own Index when opts has no overrides")
	}
}

func TestIndexForConsultsRegistryWhenAllowHostsOverridden(t *testing.T) {
	var built []string
	reg := index.NewRegistry(func(indexURL string, findLinks []string, allowHosts []string) index.Client {
		built = append(built, indexURL)
		return fakeIndex{}
	})
	in := New(nil, fakeIndex{}, nil, appdir.Layout{}, config.Default(), "cp312", nil, nil)
	in.WithIndexRegistry(reg, "https://pypi.org/pypi")

	got := in.indexFor(InstallOptions{AllowHosts: []string{"pypi.org"}})
	if got == nil {
		t.Fatal("expected a non-nil Client from the registry")
	}
	if len(built) != 1 || built[0] != "https://pypi.org/pypi" {
		t.Fatalf("expected indexFor to consult the registry with the Installer's own index URL, built=%v", built)
	}
}
