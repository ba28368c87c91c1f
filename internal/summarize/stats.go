package summarize

import (
	"slices"
	"sync"
	"time"
)

// call is one completed LLM request.
type call struct {
	at      time.Time
	latency time.Duration
	failed  bool
}

// StatsSnapshot aggregates the calls inside the window. Latencies cover
// every call, failed ones included.
type StatsSnapshot struct {
	WindowSeconds int     `json:"window_seconds"`
	Count         int     `json:"count"`
	Failed        int     `json:"failed"`
	MinMs         int64   `json:"min_ms"`
	MaxMs         int64   `json:"max_ms"`
	AvgMs         float64 `json:"avg_ms"`
	P50Ms         float64 `json:"p50_ms"`
	P95Ms         float64 `json:"p95_ms"`
	P99Ms         float64 `json:"p99_ms"`
}

// LLMStats keeps summarizer calls from a rolling window for the stats
// endpoint. It is safe for concurrent use.
type LLMStats struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
	now    func() time.Time
}

// NewLLMStats keeps calls for window, or an hour when window is not positive.
func NewLLMStats(window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{window: window, now: time.Now}
}

// Record adds a call that took latency and ended with err.
func (s *LLMStats) Record(latency time.Duration, err error) {
	latency = max(latency, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.calls = append(s.calls, call{at: now, latency: latency, failed: err != nil})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())

	snap := StatsSnapshot{WindowSeconds: int(s.window / time.Second), Count: len(s.calls)}
	if len(s.calls) == 0 {
		return snap
	}

	ms := make([]int64, len(s.calls))
	var total int64
	for i, c := range s.calls {
		ms[i] = c.latency.Milliseconds()
		total += ms[i]
		if c.failed {
			snap.Failed++
		}
	}
	slices.Sort(ms)

	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// expireLocked drops calls older than the window. Calls are appended in
// time order so the expired ones form a prefix.
func (s *LLMStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.calls) && s.calls[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.calls = slices.Delete(s.calls, 0, i)
	}
}

// percentile linearly interpolates between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
