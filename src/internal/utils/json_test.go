package utils

import "testing"

func TestSanitizeJSONStripsLeadingNoise(t *testing.T) {
	in := []byte("Collecting demo\nSuccessfully installed\n[{\"name\": \"demo\", \"version\": \"1.0\"}]\n")
	out := SanitizeJSON(in)
	if string(out) != `[{"name": "demo", "version": "1.0"}]` {
		t.Fatalf("expected the leading pip log noise stripped, got %q", out)
	}
}

func TestSanitizeJSONHandlesObjects(t *testing.T) {
	in := []byte("noise {\"ok\": true} trailing")
	out := SanitizeJSON(in)
	if string(out) != `{"ok": true}` {
		t.Fatalf("expected the object extracted without trailing text, got %q", out)
	}
}

func TestSanitizeJSONReturnsInputWhenNoBracketFound(t *testing.T) {
	in := []byte("no json here")
	out := SanitizeJSON(in)
	if string(out) != "no json here" {
		t.Fatalf("expected the original bytes when no JSON start is found, got %q", out)
	}
}

func TestSanitizeJSONFallsBackOnUnparsableTrimmed(t *testing.T) {
	in := []byte("{not valid json")
	out := SanitizeJSON(in)
	if string(out) != "{not valid json" {
		t.Fatalf("expected the trimmed-but-unparsable bytes returned as-is, got %q", out)
	}
}
