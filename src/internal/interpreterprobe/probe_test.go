package interpreterprobe

import (
	"errors"
	"strings"
	"testing"
)

func fakeRunner(calls *int) func(exe string, args ...string) ([]byte, error) {
	return func(exe string, args ...string) ([]byte, error) {
		*calls++
		snippet := args[len(args)-1]
		switch {
		case strings.Contains(snippet, "version_info"):
			return []byte("3.12.1\n"), nil
		case contains(args, "-S") && strings.Contains(snippet, "sys.path"):
			return []byte("/usr/lib/python3.12\n/usr/lib/python3.12/lib-dynload\n"), nil
		default:
			return []byte("/usr/lib/python3.12\n/usr/lib/python3.12/lib-dynload\n/home/user/.local/lib/site-packages\n"), nil
		}
	}
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestVersionReturnsParsedOutput(t *testing.T) {
	var calls int
	p := NewWithRunner(fakeRunner(&calls))
	v, err := p.Version("python3")
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "3.12.1" {
		t.Fatalf("expected version 3.12.1, got %q", v)
	}
}

func TestSitePathsExcludesStdlib(t *testing.T) {
	var calls int
	p := NewWithRunner(fakeRunner(&calls))
	site, err := p.SitePaths("python3")
	if err != nil {
		t.Fatalf("SitePaths: %v", err)
	}
	if len(site) != 1 || site[0] != "/home/user/.local/lib/site-packages" {
		t.Fatalf("expected only the site-only path, got %v", site)
	}
}

func TestStdlibPathsDisablesSiteInit(t *testing.T) {
	var calls int
	p := NewWithRunner(fakeRunner(&calls))
	stdlib, err := p.StdlibPaths("python3")
	if err != nil {
		t.Fatalf("StdlibPaths: %v", err)
	}
	if len(stdlib) != 2 {
		t.Fatalf("expected the two stdlib paths, got %v", stdlib)
	}
}

func TestResultsAreMemoizedPerExecutable(t *testing.T) {
	var calls int
	p := NewWithRunner(fakeRunner(&calls))
	if _, err := p.Version("python3"); err != nil {
		t.Fatalf("Version: %v", err)
	}
	if _, err := p.SitePaths("python3"); err != nil {
		t.Fatalf("SitePaths: %v", err)
	}
	if _, err := p.StdlibPaths("python3"); err != nil {
		t.Fatalf("StdlibPaths: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 subprocess invocations (one per probed field) across all memoized accessors, got %d", calls)
	}

	if _, err := p.Version("python3.11"); err != nil {
		t.Fatalf("Version: %v", err)
	}
	if calls != 6 {
		t.Fatalf("expected a distinct executable path to re-probe, got %d total calls", calls)
	}
}

func TestProbeErrorWrapsSubprocessFailure(t *testing.T) {
	runner := func(exe string, args ...string) ([]byte, error) {
		return []byte("boom"), errors.New("exit status 1")
	}
	p := NewWithRunner(runner)
	_, err := p.Version("python3")
	if err == nil {
		t.Fatal("expected an error when the subprocess fails")
	}
	probeErr, ok := err.(*ProbeError)
	if !ok {
		t.Fatalf("expected *ProbeError, got %T", err)
	}
	if probeErr.Executable != "python3" || probeErr.Output != "boom" {
		t.Fatalf("expected the ProbeError to carry the executable and output, got %+v", probeErr)
	}
	if !errors.Is(probeErr, probeErr.Err) {
		t.Fatal("expected Unwrap to expose the underlying error")
	}
}

func TestModuleFileReturnsTrimmedPath(t *testing.T) {
	runner := func(exe string, args ...string) ([]byte, error) {
		return []byte("/usr/lib/python3.12/site-packages/setuptools/__init__.py\n"), nil
	}
	p := NewWithRunner(runner)
	path, err := p.ModuleFile("python3", "setuptools")
	if err != nil {
		t.Fatalf("ModuleFile: %v", err)
	}
	if path != "/usr/lib/python3.12/site-packages/setuptools/__init__.py" {
		t.Fatalf("expected a trimmed module path, got %q", path)
	}
}
