package telemetry

import (
	"os"
	"testing"
)

func TestStartStopWritesSessionArtifacts(t *testing.T) {
	dir := t.TempDir()

	if Enabled() {
		t.Fatal("expected no session active before Start")
	}

	info, err := Start(dir)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !Enabled() {
		t.Fatal("expected a session to be active after Start")
	}

	Event("demo.event", "key", "value")
	done := StartSpan("demo.span", "id", 1)
	done("status", "ok")

	got, err := Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got.LogPath != info.LogPath {
		t.Fatalf("expected Stop to return the same session info as Start, got %+v vs %+v", got, info)
	}
	if Enabled() {
		t.Fatal("expected no session active after Stop")
	}

	for _, p := range []string{info.LogPath, info.CPUPath, info.HeapPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected session artifact to exist at %s: %v", p, err)
		}
	}
}

func TestStartIsIdempotentWhileActive(t *testing.T) {
	dir := t.TempDir()
	first, err := Start(dir)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer Stop()

	second, err := Start(t.TempDir())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if second.LogPath != first.LogPath {
		t.Fatal("expected a second Start while a session is active to return the existing session unchanged")
	}
}

func TestStopWithNoActiveSessionIsANoOp(t *testing.T) {
	if Enabled() {
		t.Skip("a session from another test is still active")
	}
	info, err := Stop()
	if err != nil {
		t.Fatalf("expected Stop with no active session not to error, got %v", err)
	}
	if info.LogPath != "" {
		t.Fatalf("expected an empty SessionInfo, got %+v", info)
	}
}

func TestEventAndStartSpanAreNoOpsWithoutAnActiveSession(t *testing.T) {
	if Enabled() {
		t.Skip("a session from another test is still active")
	}
	// Must not panic even though no logger is configured.
	Event("demo.event")
	done := StartSpan("demo.span")
	done("status", "ok")
}
