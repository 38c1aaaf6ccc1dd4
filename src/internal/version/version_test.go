package version

import "testing"

func TestCompareNumericOrdering(t *testing.T) {
	if !Parse("1.2").Less(Parse("1.10")) {
		t.Fatal("expected 1.2 < 1.10 (numeric, not lexicographic, comparison)")
	}
}

func TestCompareEqualVersions(t *testing.T) {
	if !Parse("1.0.0").Equal(Parse("1.0.0")) {
		t.Fatal("expected 1.0.0 == 1.0.0")
	}
}

func TestPreReleaseSortsBeforeFinal(t *testing.T) {
	if !Parse("1.0rc1").Less(Parse("1.0")) {
		t.Fatal("expected 1.0rc1 < 1.0")
	}
}

func TestDevSortsBeforePreRelease(t *testing.T) {
	if !Parse("1.0.dev1").Less(Parse("1.0rc1")) {
		t.Fatal("expected 1.0.dev1 < 1.0rc1")
	}
}

func TestIsFinal(t *testing.T) {
	if !Parse("1.2.3").IsFinal() {
		t.Fatal("expected 1.2.3 to be final")
	}
	if Parse("1.2.3rc1").IsFinal() {
		t.Fatal("expected 1.2.3rc1 not to be final")
	}
}

func TestShorterVersionSortsBeforeExplicitTrailingZero(t *testing.T) {
	// "1.0"'s *final sentinel occupies the slot "1.0.0"'s explicit
	// trailing "0" component fills, and '*' sorts below any digit, so
	// the shorter form orders strictly before the longer one.
	if !Parse("1.0").Less(Parse("1.0.0")) {
		t.Fatal("expected 1.0 < 1.0.0")
	}
}

func TestUnparsableInputStillOrders(t *testing.T) {
	a := Parse("not-a-version")
	b := Parse("also-not-a-version")
	// Compare must not panic on degenerate input, even if the order
	// isn't meaningful.
	_ = a.Compare(b)
}

func TestStringRoundTrips(t *testing.T) {
	raw := "2021.3.1"
	if Parse(raw).String() != raw {
		t.Fatalf("expected String() to return the original raw input %q", raw)
	}
}
