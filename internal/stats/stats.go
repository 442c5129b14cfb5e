// Package stats keeps rolling latency and batch-size figures for model calls.
package stats

import (
	"slices"
	"sync"
	"time"
)

// call is one recorded backend request.
type call struct {
	at    time.Time
	ms    int64
	items int
}

// Snapshot aggregates the calls still inside the window.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`

	// Items is the number of texts or pairs sent across all calls.
	Items     int     `json:"items"`
	MaxBatch  int     `json:"max_batch"`
	AvgBatch  float64 `json:"avg_batch"`
	PerItemMs float64 `json:"per_item_ms"`
}

// Latency tracks recent model calls within a rolling window.
type Latency struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
}

func NewLatency(window time.Duration) *Latency {
	if window <= 0 {
		window = time.Hour
	}
	return &Latency{
		calls:  make([]call, 0, 256),
		window: window,
	}
}

// Observe records a call of items inputs that began at start.
func (s *Latency) Observe(start time.Time, items int) {
	s.Record(time.Since(start).Milliseconds(), items)
}

// Record adds a call that took durationMs for items inputs. Negative values count as zero.
func (s *Latency) Record(durationMs int64, items int) {
	now := time.Now()
	c := call{at: now, ms: max(durationMs, 0), items: max(items, 0)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	s.calls = append(s.calls, c)
}

func (s *Latency) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	s.expireLocked(now)
	calls := slices.Clone(s.calls)
	s.mu.Unlock()

	if len(calls) == 0 {
		return Snapshot{}
	}

	durations := make([]int64, len(calls))
	var totalMs int64
	snap := Snapshot{Count: len(calls)}
	for i, c := range calls {
		durations[i] = c.ms
		totalMs += c.ms
		snap.Items += c.items
		snap.MaxBatch = max(snap.MaxBatch, c.items)
	}
	slices.Sort(durations)

	snap.MinMs = durations[0]
	snap.MaxMs = durations[len(durations)-1]
	snap.AvgMs = float64(totalMs) / float64(len(calls))
	snap.P50Ms = percentile(durations, 50)
	snap.P95Ms = percentile(durations, 95)
	snap.P99Ms = percentile(durations, 99)
	snap.AvgBatch = float64(snap.Items) / float64(len(calls))
	if snap.Items > 0 {
		snap.PerItemMs = float64(totalMs) / float64(snap.Items)
	}
	return snap
}

// expireLocked drops calls older than the window. Calls are appended in time order.
func (s *Latency) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.calls) && s.calls[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.calls = append(s.calls[:0], s.calls[i:]...)
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[n-1])
	}
	pos := float64(n-1) * pct / 100
	lo := int(pos)
	if lo+1 >= n {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
