package remote

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(OpAnalysis, 100)
	stats.Record(OpAnalysis, 200)
	stats.RecordFailure(OpAnalysis, 300)
	stats.Record(OpAnalysis, 400)
	stats.Record(OpAnalysis, 500)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Failures != 1 {
		t.Fatalf("expected failures=1, got %d", snap.Failures)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.RecordFailure(OpAnalysis, 100)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 || snap.Failures != 0 {
		t.Fatalf("expected empty snapshot after prune, got %+v", snap)
	}

	stats.Record(OpAnalysis, 200)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(OpAnalysis, -10)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsSnapshotByOp(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(OpAnalysis, 100)
	stats.Record(OpAnalysis, 300)
	stats.RecordFailure(OpRender, 900)
	stats.Record(OpPlan, 50)
	stats.Record("", 10)

	byOp := stats.SnapshotByOp()
	if len(byOp) != 3 {
		t.Fatalf("expected 3 operations, got %v", byOp)
	}
	if got := byOp[OpAnalysis]; got.Count != 2 || got.Failures != 0 || got.AvgMs != 200 {
		t.Errorf("unexpected analysis snapshot %+v", got)
	}
	if got := byOp[OpRender]; got.Count != 1 || got.Failures != 1 || got.MaxMs != 900 {
		t.Errorf("unexpected render snapshot %+v", got)
	}
	if got := byOp[OpPlan]; got.Count != 1 || got.MinMs != 50 {
		t.Errorf("unexpected plan snapshot %+v", got)
	}

	total := stats.Snapshot()
	if total.Count != 5 || total.Failures != 1 {
		t.Errorf("expected unlabeled call in the total, got %+v", total)
	}
}
