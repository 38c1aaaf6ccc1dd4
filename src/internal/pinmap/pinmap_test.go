package pinmap

import (
	"testing"

	"eggctl/src/internal/requirement"
)

func TestConstrainPassesThroughUnpinned(t *testing.T) {
	m := New(map[string]string{})
	r, _ := requirement.Parse("demo>=1.0")
	out, err := m.Constrain(r)
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if out.Canonical() != r.Canonical() {
		t.Fatalf("expected an unpinned requirement to pass through unchanged, got %v", out)
	}
}

func TestConstrainNarrowsToExactPin(t *testing.T) {
	m := New(map[string]string{"demo": "1.5"})
	r, _ := requirement.Parse("demo>=1.0")
	out, err := m.Constrain(r)
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	v, ok := out.IsExactPin()
	if !ok || v.String() != "1.5" {
		t.Fatalf("expected requirement narrowed to ==1.5, got %v", out)
	}
}

func TestConstrainRejectsIncompatiblePin(t *testing.T) {
	m := New(map[string]string{"demo": "0.5"})
	r, _ := requirement.Parse("demo>=1.0")
	_, err := m.Constrain(r)
	if err == nil {
		t.Fatal("expected an IncompatibleVersionError")
	}
	if _, ok := err.(*IncompatibleVersionError); !ok {
		t.Fatalf("expected *IncompatibleVersionError, got %T", err)
	}
}

func TestNewIgnoresWildcardAndEmptyPins(t *testing.T) {
	m := New(map[string]string{"demo": "*", "other": ""})
	if _, ok := m.Lookup("demo"); ok {
		t.Fatal("expected a wildcard pin to be ignored")
	}
	if _, ok := m.Lookup("other"); ok {
		t.Fatal("expected an empty pin to be ignored")
	}
}

func TestLookupNormalizesKeyCaseOnConstruction(t *testing.T) {
	m := New(map[string]string{"Zope.Interface": "4.0"})
	v, ok := m.Lookup("zope-interface")
	if !ok || v.String() != "4.0" {
		t.Fatalf("expected lookup under the normalized key to find the pin, got ok=%v v=%v", ok, v)
	}
}
