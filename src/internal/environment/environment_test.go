package environment

import (
	"testing"

	"eggctl/src/internal/distribution"
	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
	"eggctl/src/internal/workingset"

	"github.com/spf13/afero"
)

func writeDistInfo(t *testing.T, fs afero.Fs, sitePath, name, version string) {
	t.Helper()
	dir := sitePath + "/" + name + "-" + version + ".dist-info"
	content := "Name: " + name + "\nVersion: " + version + "\n"
	if err := afero.WriteFile(fs, dir+"/METADATA", []byte(content), 0644); err != nil {
		t.Fatalf("writeDistInfo: %v", err)
	}
}

func TestScanFindsDistInfoEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDistInfo(t, fs, "/site", "demo", "1.0")

	env, err := Scan(fs, []string{"/site"}, []string{"/site"}, "cp312")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	cands := env.Candidates("demo")
	if len(cands) != 1 || cands[0].Version.String() != "1.0" {
		t.Fatalf("expected one demo candidate at 1.0, got %v", cands)
	}
	if !env.IsSitePath("/site") {
		t.Fatal("expected /site to be recognized as a site path")
	}
}

func TestScanIgnoresMissingPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Scan(fs, []string{"/does-not-exist"}, nil, "cp312"); err != nil {
		t.Fatalf("expected a missing path to be silently skipped, got error: %v", err)
	}
}

func TestScanOrdersCandidatesBestFirst(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDistInfo(t, fs, "/site", "demo", "1.0")
	writeDistInfo(t, fs, "/site", "demo", "2.0")

	env, err := Scan(fs, []string{"/site"}, nil, "cp312")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	cands := env.Candidates("demo")
	if len(cands) != 2 || cands[0].Version.String() != "2.0" {
		t.Fatalf("expected the 2.0 candidate first, got %v", cands)
	}
}

func TestBestMatchReturnsHighestSatisfying(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDistInfo(t, fs, "/site", "demo", "1.0")
	writeDistInfo(t, fs, "/site", "demo", "2.0")

	env, err := Scan(fs, []string{"/site"}, nil, "cp312")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	req, _ := requirement.Parse("demo<2.0")
	ws := workingset.New()
	match, err := env.BestMatch(req, ws)
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}
	if match == nil || match.Version.String() != "1.0" {
		t.Fatalf("expected the 1.0 candidate to satisfy demo<2.0, got %v", match)
	}
}

func TestBestMatchReturnsNilWhenNoCandidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	env, err := Scan(fs, nil, nil, "cp312")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	req, _ := requirement.Parse("missing>=1.0")
	match, err := env.BestMatch(req, workingset.New())
	if err != nil || match != nil {
		t.Fatalf("expected no match and no error, got match=%v err=%v", match, err)
	}
}

func TestBestMatchRaisesVersionConflictWhenOnlyCandidateConflicts(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDistInfo(t, fs, "/site", "demo", "2.0")

	env, err := Scan(fs, []string{"/site"}, nil, "cp312")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// demo is already pinned in the working set at a version that
	// doesn't satisfy the new requirement, even though the environment's
	// own candidate (2.0) would.
	ws := workingset.New()
	ws.Add(distribution.Distribution{ProjectKey: "demo", Version: version.Parse("0.5")})

	req, _ := requirement.Parse("demo>=1.0")
	_, err = env.BestMatch(req, ws)
	if err == nil {
		t.Fatal("expected a VersionConflictError when the only candidate's key already conflicts in the working set")
	}
	if _, ok := err.(*VersionConflictError); !ok {
		t.Fatalf("expected *VersionConflictError, got %T", err)
	}
}
