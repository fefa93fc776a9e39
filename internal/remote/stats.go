package remote

import (
	"sort"
	"sync"
	"time"
)

// Op names the pipeline operation a remote call served.
type Op string

const (
	OpAnalysis Op = "analysis"
	OpPlan     Op = "plan"
	OpRender   Op = "render"
	OpAsk      Op = "ask"
)

type sample struct {
	timestamp  time.Time
	op         Op
	durationMs int64
	failed     bool
}

// StatsSnapshot is a point-in-time aggregate of remote call latencies.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// Stats tracks recent remote call latencies within a rolling window. It is
// the only state shared between concurrent conversions and carries no
// conversion data.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *Stats) Record(op Op, durationMs int64) {
	s.add(op, durationMs, false)
}

func (s *Stats) RecordFailure(op Op, durationMs int64) {
	s.add(op, durationMs, true)
}

func (s *Stats) add(op Op, durationMs int64, failed bool) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		op:         op,
		durationMs: durationMs,
		failed:     failed,
	})
}

// Snapshot aggregates every call in the window.
func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	return summarize(s.samples)
}

// SnapshotByOp aggregates the window per operation. Calls recorded without
// an operation count only toward Snapshot.
func (s *Stats) SnapshotByOp() map[Op]StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	grouped := make(map[Op][]sample)
	for _, sm := range s.samples {
		if sm.op == "" {
			continue
		}
		grouped[sm.op] = append(grouped[sm.op], sm)
	}
	out := make(map[Op]StatsSnapshot, len(grouped))
	for op, samples := range grouped {
		out[op] = summarize(samples)
	}
	return out
}

func summarize(samples []sample) StatsSnapshot {
	if len(samples) == 0 {
		return StatsSnapshot{}
	}

	values := make([]int64, 0, len(samples))
	var sum int64
	failures := 0
	for _, sm := range samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failed {
			failures++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return StatsSnapshot{
		Count:    len(values),
		Failures: failures,
		MinMs:    values[0],
		MaxMs:    values[len(values)-1],
		AvgMs:    float64(sum) / float64(len(values)),
		P50Ms:    percentile(values, 50),
		P95Ms:    percentile(values, 95),
		P99Ms:    percentile(values, 99),
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
