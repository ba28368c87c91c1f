package summarize

import (
	"errors"
	"testing"
	"time"
)

func TestLLMStats_Quantiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{500, 100, 400, 200, 300} {
		stats.Record(time.Duration(ms)*time.Millisecond, nil)
	}

	snap := stats.Snapshot()
	want := StatsSnapshot{
		WindowSeconds: 3600,
		Count:         5,
		MinMs:         100,
		MaxMs:         500,
		AvgMs:         300,
		P50Ms:         300,
		P95Ms:         480,
		P99Ms:         496,
	}
	if snap != want {
		t.Fatalf("unexpected snapshot:\n got %+v\nwant %+v", snap, want)
	}
}

func TestLLMStats_CountsFailures(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(10*time.Millisecond, nil)
	stats.Record(20*time.Millisecond, errors.New("boom"))
	stats.Record(-time.Second, &RetryableError{StatusCode: 529})

	snap := stats.Snapshot()
	if snap.Count != 3 || snap.Failed != 2 {
		t.Fatalf("expected 3 calls with 2 failed, got %+v", snap)
	}
	if snap.MinMs != 0 {
		t.Fatalf("expected negative latency clamped to 0, got %d", snap.MinMs)
	}
}

func TestLLMStats_ExpiresOldCalls(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := NewLLMStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(100*time.Millisecond, nil)
	now = now.Add(30 * time.Second)
	stats.Record(200*time.Millisecond, nil)
	now = now.Add(45 * time.Second)

	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected only the recent call, got %+v", snap)
	}

	now = now.Add(time.Hour)
	if snap := stats.Snapshot(); snap.Count != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected empty window, got %+v", snap)
	}
}

func TestLLMStats_DefaultWindow(t *testing.T) {
	if got := NewLLMStats(0).Snapshot().WindowSeconds; got != 3600 {
		t.Fatalf("expected 1h default window, got %ds", got)
	}
}
