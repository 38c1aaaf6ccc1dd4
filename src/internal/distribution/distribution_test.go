package distribution

import (
	"strings"
	"testing"

	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
)

func TestParseMetadataReaderBasicFields(t *testing.T) {
	raw := "Name: demo\nVersion: 1.2.3\nSummary: a demo package\nRequires-Dist: six>=1.0\n"
	meta, err := ParseMetadataReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseMetadataReader: %v", err)
	}
	if meta.Name != "demo" || meta.Version != "1.2.3" {
		t.Fatalf("expected Name/Version to be parsed, got %+v", meta)
	}
	if !meta.HasMetadata("Requires-Dist") {
		t.Fatal("expected Requires-Dist to be present")
	}
}

func TestRequiresFiltersByExtra(t *testing.T) {
	raw := "Name: demo\nRequires-Dist: six>=1.0\nRequires-Dist: pytest>=7.0; extra == \"test\"\n"
	meta, err := ParseMetadataReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseMetadataReader: %v", err)
	}

	base := meta.Requires(nil)
	if len(base) != 1 || base[0].Key != "six" {
		t.Fatalf("expected only the unconditional dep without extras, got %v", base)
	}

	withTest := meta.Requires([]string{"test"})
	if len(withTest) != 2 {
		t.Fatalf("expected both deps with the test extra requested, got %v", withTest)
	}
}

func TestConflictsWith(t *testing.T) {
	d := Distribution{ProjectKey: "demo", Version: version.Parse("1.0")}
	r, _ := requirement.Parse("demo>=2.0")
	if !d.ConflictsWith(r) {
		t.Fatal("expected version 1.0 to conflict with a >=2.0 requirement")
	}

	other, _ := requirement.Parse("other>=2.0")
	if d.ConflictsWith(other) {
		t.Fatal("a requirement for a different project key should never conflict")
	}
}

func TestSortBestToWorstOrdersByVersionThenPrecedence(t *testing.T) {
	dists := []Distribution{
		{ProjectKey: "demo", Version: version.Parse("1.0"), Precedence: SourceArchive},
		{ProjectKey: "demo", Version: version.Parse("2.0"), Precedence: SourceArchive},
		{ProjectKey: "demo", Version: version.Parse("2.0"), Precedence: Develop},
	}
	SortBestToWorst(dists)
	if dists[0].Precedence != Develop || !dists[0].Version.Equal(version.Parse("2.0")) {
		t.Fatalf("expected the develop 2.0 candidate first, got %+v", dists[0])
	}
	if !dists[2].Version.Equal(version.Parse("1.0")) {
		t.Fatalf("expected the 1.0 candidate last, got %+v", dists[2])
	}
}
