package workingset

import (
	"testing"

	"eggctl/src/internal/distribution"
	"eggctl/src/internal/requirement"
	"eggctl/src/internal/version"
)

func TestAddThenGetReplacesSameKey(t *testing.T) {
	ws := New()
	ws.Add(distribution.Distribution{ProjectKey: "demo", Version: version.Parse("1.0")})
	ws.Add(distribution.Distribution{ProjectKey: "demo", Version: version.Parse("2.0")})

	got, ok := ws.Get("demo")
	if !ok || !got.Version.Equal(version.Parse("2.0")) {
		t.Fatalf("expected the second Add to replace the first, got %+v ok=%v", got, ok)
	}
	if ws.Len() != 1 {
		t.Fatalf("expected exactly one distinct key, got Len()=%d", ws.Len())
	}
}

func TestDistributionsPreservesInsertionOrder(t *testing.T) {
	ws := New()
	ws.Add(distribution.Distribution{ProjectKey: "b", Version: version.Parse("1.0")})
	ws.Add(distribution.Distribution{ProjectKey: "a", Version: version.Parse("1.0")})
	ws.Add(distribution.Distribution{ProjectKey: "b", Version: version.Parse("1.1")})

	dists := ws.Distributions()
	if len(dists) != 2 || dists[0].ProjectKey != "b" || dists[1].ProjectKey != "a" {
		t.Fatalf("expected insertion order [b, a] preserved across the re-Add, got %v", dists)
	}
}

func TestSatisfiesAndConflicts(t *testing.T) {
	ws := New()
	ws.Add(distribution.Distribution{ProjectKey: "demo", Version: version.Parse("1.0")})

	ok, _ := requirement.Parse("demo>=1.0")
	if !ws.Satisfies(ok) {
		t.Fatal("expected demo>=1.0 to be satisfied by installed demo 1.0")
	}

	conflicting, _ := requirement.Parse("demo>=2.0")
	if ws.Satisfies(conflicting) {
		t.Fatal("expected demo>=2.0 not to be satisfied by installed demo 1.0")
	}
	if _, conflicts := ws.Conflicts(conflicting); !conflicts {
		t.Fatal("expected Conflicts to report the existing entry as conflicting")
	}

	missing, _ := requirement.Parse("other>=1.0")
	if _, conflicts := ws.Conflicts(missing); conflicts {
		t.Fatal("a requirement with no existing entry cannot conflict")
	}
}

func TestFromSliceSeedsEntries(t *testing.T) {
	ws := FromSlice([]distribution.Distribution{
		{ProjectKey: "demo", Version: version.Parse("1.0")},
	})
	if ws.Len() != 1 {
		t.Fatalf("expected FromSlice to seed one entry, got Len()=%d", ws.Len())
	}
}
