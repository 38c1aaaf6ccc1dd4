package scriptgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eggctl/src/internal/distribution"
)

func TestGenerateClassicWritesLauncherWithPathsAndShebang(t *testing.T) {
	dest := t.TempDir()
	g := New(Options{Dest: dest, Executable: "/usr/bin/python3"})

	dists := []distribution.Distribution{{ProjectKey: "demo", Location: filepath.Join(dest, "demo-1.0")}}
	entries := []EntryPoint{{Name: "demo-cli", Module: "demo.cli", Attribute: "main", ArgsExpr: "sys.argv[1:]"}}

	written, err := g.GenerateClassic(dists, entries)
	if err != nil {
		t.Fatalf("GenerateClassic: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected one launcher written, got %v", written)
	}

	body, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(body)
	if !strings.HasPrefix(text, "#!/usr/bin/python3\n") {
		t.Fatalf("expected a shebang to the configured executable, got %q", text[:40])
	}
	if !strings.Contains(text, "import demo.cli") {
		t.Fatalf("expected the launcher to import the entry module, got:\n%s", text)
	}
	if !strings.Contains(text, "sys.exit(demo.cli.main(sys.argv[1:]))") {
		t.Fatalf("expected the launcher to invoke the entry attribute with its args expression, got:\n%s", text)
	}
}

func TestGenerateClassicDisablesSiteInit(t *testing.T) {
	dest := t.TempDir()
	g := New(Options{Dest: dest, Executable: "/usr/bin/python3", DisableSiteInit: true})
	written, err := g.GenerateClassic(nil, []EntryPoint{{Name: "demo", Module: "demo", Attribute: "main"}})
	if err != nil {
		t.Fatalf("GenerateClassic: %v", err)
	}
	body, _ := os.ReadFile(written[0])
	if !strings.HasPrefix(string(body), "#!/usr/bin/python3 -S\n") {
		t.Fatalf("expected a -S shebang flag, got %q", string(body)[:40])
	}
}

func TestGenerateClassicRelativePathRewriting(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "bin")
	eggDir := filepath.Join(base, "eggs", "demo-1.0")
	if err := os.MkdirAll(eggDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	g := New(Options{Dest: dest, Executable: "/usr/bin/python3", RelativeBase: base})
	dists := []distribution.Distribution{{ProjectKey: "demo", Location: eggDir}}
	written, err := g.GenerateClassic(dists, []EntryPoint{{Name: "demo", Module: "demo", Attribute: "main"}})
	if err != nil {
		t.Fatalf("GenerateClassic: %v", err)
	}
	body, _ := os.ReadFile(written[0])
	text := string(body)
	if !strings.Contains(text, "_base(") || !strings.Contains(text, "_join(") {
		t.Fatalf("expected a relocatable _base/_join path entry, got:\n%s", text)
	}
	if !strings.Contains(text, "def _base(n):") {
		t.Fatalf("expected the _base helper function to be emitted, got:\n%s", text)
	}
}

// fakeLocator satisfies siteModuleLocator without spawning a real
// interpreter, serving a tiny stand-in site module from realSite.
type fakeLocator struct {
	modules   map[string]string // module name -> on-disk path
	contents  map[string]string // path -> file contents
	sitePaths []string
}

func (f *fakeLocator) ModuleFile(exe, name string) (string, error) {
	path, ok := f.modules[name]
	if !ok {
		return "", fmt.Errorf("fakeLocator: no module named %q", name)
	}
	return path, nil
}

func (f *fakeLocator) SitePaths(exe string) ([]string, error) {
	return f.sitePaths, nil
}

const fakeRealSite = `"""Fake real site module."""
ENABLE_USER_SITE = None

def addsitedir(sitedir, known_paths=None):
    pass

def addsitepackages(known_paths):
    """Add site packages."""
    return known_paths

def main():
    pass
`

func newFakeSiteLocator(t *testing.T, dest, content string) *fakeLocator {
	t.Helper()
	realSitePath := filepath.Join(dest, "_real_site.py")
	if err := os.WriteFile(realSitePath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile real site: %v", err)
	}
	return &fakeLocator{modules: map[string]string{"site": realSitePath}}
}

func TestGenerateSiteSafeRewritesRealSiteModule(t *testing.T) {
	dest := t.TempDir()
	locator := newFakeSiteLocator(t, dest, fakeRealSite)
	g := New(Options{Dest: dest, Executable: "/usr/bin/python3", Probe: locator})

	eggLoc := filepath.Join(dest, "demo-1.0")
	dists := []distribution.Distribution{{ProjectKey: "demo", Location: eggLoc}}
	entries := []EntryPoint{
		{Name: "demo-a", Module: "demo", Attribute: "main"},
		{Name: "demo-b", Module: "demo", Attribute: "other"},
	}

	written, err := g.GenerateSiteSafe(dists, entries)
	if err != nil {
		t.Fatalf("GenerateSiteSafe: %v", err)
	}
	if len(written) != 4 {
		t.Fatalf("expected site.py, sitecustomize.py, and two launchers, got %v", written)
	}

	siteBody, err := os.ReadFile(filepath.Join(dest, "site.py"))
	if err != nil {
		t.Fatalf("ReadFile site.py: %v", err)
	}
	text := string(siteBody)
	if !strings.Contains(text, "def addsitepackages(known_paths):") {
		t.Fatalf("expected a rewritten addsitepackages, got:\n%s", text)
	}
	if !strings.Contains(text, "def original_addsitepackages(") {
		t.Fatalf("expected the original addsitepackages to be preserved under a new name, got:\n%s", text)
	}
	if !strings.Contains(text, eggLoc) {
		t.Fatalf("expected the working set's location in the rewritten site module, got:\n%s", text)
	}
	if !strings.Contains(text, "ENABLE_USER_SITE = False") {
		t.Fatalf("expected ENABLE_USER_SITE forced off, got:\n%s", text)
	}

	if _, err := os.Stat(filepath.Join(dest, "sitecustomize.py")); err != nil {
		t.Fatalf("expected sitecustomize.py to be written: %v", err)
	}

	launcherBody, err := os.ReadFile(filepath.Join(dest, "demo-a"))
	if err != nil {
		t.Fatalf("ReadFile launcher: %v", err)
	}
	launcherText := string(launcherBody)
	if !strings.HasPrefix(launcherText, "#!/usr/bin/python3 -S\n") {
		t.Fatalf("expected launchers to disable site init, got %q", launcherText[:40])
	}
	if !strings.Contains(launcherText, "import site") {
		t.Fatalf("expected the launcher to manually import the rewritten site module, got:\n%s", launcherText)
	}
	if strings.Contains(launcherText, eggLoc) {
		t.Fatalf("expected the site-safe launcher not to inline distribution locations, got:\n%s", launcherText)
	}
}

func TestGenerateSiteSafeRaisesErrMarkerNotFoundWhenMarkerMissing(t *testing.T) {
	dest := t.TempDir()
	locator := newFakeSiteLocator(t, dest, "\"\"\"No addsitepackages here.\"\"\"\n")
	g := New(Options{Dest: dest, Executable: "/usr/bin/python3", Probe: locator})

	_, err := g.GenerateSiteSafe(nil, []EntryPoint{{Name: "demo", Module: "demo", Attribute: "main"}})
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound, got %v", err)
	}
}

func TestGenerateSiteSafeIncludesSitePackagesAndNamespaceSetup(t *testing.T) {
	dest := t.TempDir()
	locator := newFakeSiteLocator(t, dest, fakeRealSite)
	locator.sitePaths = []string{"/usr/lib/python3/site-packages"}
	g := New(Options{Dest: dest, Executable: "/usr/bin/python3", Probe: locator, IncludeSitePackages: true})

	setuptoolsLoc := filepath.Join(dest, "setuptools-1.0")
	dists := []distribution.Distribution{{ProjectKey: "setuptools", Location: setuptoolsLoc}}
	if _, err := g.GenerateSiteSafe(dists, nil); err != nil {
		t.Fatalf("GenerateSiteSafe: %v", err)
	}

	siteBody, err := os.ReadFile(filepath.Join(dest, "site.py"))
	if err != nil {
		t.Fatalf("ReadFile site.py: %v", err)
	}
	text := string(siteBody)
	if !strings.Contains(text, "/usr/lib/python3/site-packages") {
		t.Fatalf("expected the real site path to be walked via addsitedir, got:\n%s", text)
	}
	if !strings.Contains(text, "pkg_resources.working_set.add_entry(sitedir)") {
		t.Fatalf("expected namespace package registration when setuptools is present, got:\n%s", text)
	}
	if !strings.Contains(text, setuptoolsLoc) {
		t.Fatalf("expected the setuptools location in the preamble, got:\n%s", text)
	}
}

func TestEntryPointDefaultsScriptNameToName(t *testing.T) {
	dest := t.TempDir()
	g := New(Options{Dest: dest, Executable: "/usr/bin/python3"})
	written, err := g.GenerateClassic(nil, []EntryPoint{{Name: "my-tool", Module: "mytool", Attribute: "main"}})
	if err != nil {
		t.Fatalf("GenerateClassic: %v", err)
	}
	if filepath.Base(written[0]) != "my-tool" {
		t.Fatalf("expected the launcher filename to default to the entry point Name, got %q", written[0])
	}
}
