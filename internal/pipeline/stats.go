package pipeline

import (
	"slices"
	"sync"
	"time"
)

// Phases timed by the worker.
const (
	PhaseExtract = "extract"
	PhaseParse   = "parse"
	PhaseInject  = "inject"
	PhaseShoot   = "screenshot"
	PhaseTotal   = "total"
)

type timing struct {
	at time.Time
	ms int64
}

// DurationSummary aggregates the durations recorded for one phase.
type DurationSummary struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// PhaseStats keeps per-phase job durations within a rolling window.
type PhaseStats struct {
	mu      sync.Mutex
	window  time.Duration
	timings map[string][]timing
}

func NewPhaseStats(window time.Duration) *PhaseStats {
	if window <= 0 {
		window = time.Hour
	}
	return &PhaseStats{
		window:  window,
		timings: make(map[string][]timing),
	}
}

// Record adds one duration for phase.
func (s *PhaseStats) Record(phase string, d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings[phase] = append(s.prune(phase, now), timing{at: now, ms: ms})
}

// Snapshot summarises every phase that has samples inside the window.
func (s *PhaseStats) Snapshot() map[string]DurationSummary {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]DurationSummary, len(s.timings))
	for phase := range s.timings {
		kept := s.prune(phase, now)
		if len(kept) == 0 {
			delete(s.timings, phase)
			continue
		}
		s.timings[phase] = kept
		out[phase] = summarize(kept)
	}
	return out
}

// prune drops samples older than the window. Callers hold mu.
func (s *PhaseStats) prune(phase string, now time.Time) []timing {
	cutoff := now.Add(-s.window)
	ts := s.timings[phase]
	i := 0
	for i < len(ts) && ts[i].at.Before(cutoff) {
		i++
	}
	return ts[i:]
}

func summarize(ts []timing) DurationSummary {
	values := make([]int64, len(ts))
	var sum int64
	for i, t := range ts {
		values[i] = t.ms
		sum += t.ms
	}
	slices.Sort(values)
	return DurationSummary{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
	}
}

// percentile interpolates linearly between the two nearest ranks.
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
	lower := int(pos)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(pos-float64(lower))
}
