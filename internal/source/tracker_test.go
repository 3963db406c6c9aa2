package source

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func newTestTracker(t *testing.T, timeout time.Duration) *Tracker {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	tr := NewTracker(logger, timeout, time.Hour)
	t.Cleanup(tr.Stop)
	return tr
}

func TestTrackerRecord(t *testing.T) {
	tr := newTestTracker(t, time.Minute)

	tr.Record("10.0.0.1:5000", Observation{KeyPresses: 1})
	tr.Record("10.0.0.1:5000", Observation{ParseError: true})
	tr.Record("10.0.0.1:5000", Observation{Timestamp: 42, KeyPresses: 2})
	tr.Record("10.0.0.2:5000", Observation{})

	if tr.Count() != 2 {
		t.Fatalf("Expected 2 sources, got %d", tr.Count())
	}

	src, ok := tr.Get("10.0.0.1:5000")
	if !ok {
		t.Fatal("Source not found")
	}
	info := src.Info()
	if info.Packets != 3 {
		t.Errorf("Expected 3 packets, got %d", info.Packets)
	}
	if info.ParseErrors != 1 {
		t.Errorf("Expected 1 parse error, got %d", info.ParseErrors)
	}
	if info.KeyPresses != 3 {
		t.Errorf("Expected 3 key presses, got %d", info.KeyPresses)
	}
	if info.LastTimestamp != 42 {
		t.Errorf("Expected last timestamp 42, got %d", info.LastTimestamp)
	}
	if info.LastSeen.Before(info.FirstSeen) {
		t.Errorf("LastSeen %v before FirstSeen %v", info.LastSeen, info.FirstSeen)
	}

	snapshot := tr.Snapshot()
	if len(snapshot) != 2 || snapshot[0].Address != "10.0.0.1:5000" {
		t.Errorf("Unexpected snapshot: %+v", snapshot)
	}
}

func TestTrackerCleanupExpired(t *testing.T) {
	tr := newTestTracker(t, time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }

	tr.Record("old:1", Observation{})
	now = now.Add(45 * time.Second)
	tr.Record("new:1", Observation{})
	now = now.Add(30 * time.Second)

	if removed := tr.cleanupExpired(); removed != 1 {
		t.Fatalf("Expected 1 expired source, got %d", removed)
	}
	if _, ok := tr.Get("old:1"); ok {
		t.Error("Expired source still tracked")
	}
	if _, ok := tr.Get("new:1"); !ok {
		t.Error("Active source removed")
	}
}

func TestTrackerRemove(t *testing.T) {
	tr := newTestTracker(t, time.Minute)
	tr.Record("a:1", Observation{})

	if !tr.Remove("a:1") {
		t.Error("Expected Remove to succeed")
	}
	if tr.Remove("a:1") {
		t.Error("Expected second Remove to report false")
	}
}

func TestTrackerConcurrentRecord(t *testing.T) {
	tr := newTestTracker(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record("shared:1", Observation{KeyPresses: 1})
			}
		}()
	}
	wg.Wait()

	src, _ := tr.Get("shared:1")
	if got := src.Info().Packets; got != 800 {
		t.Errorf("Expected 800 packets, got %d", got)
	}
	if tr.Count() != 1 {
		t.Errorf("Expected a single source, got %d", tr.Count())
	}
}
