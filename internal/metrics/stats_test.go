package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(64, 20*time.Millisecond, 10*time.Millisecond, 1.2, 0.5)
	w.Record(64, 10*time.Millisecond, 20*time.Millisecond, 0.8, 0.7)
	snap := w.Snapshot()
	if math.Abs(snap.SamplesPerSec-2133.3333) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.SamplesPerSec)
	}
	if w.samples != 0 || w.steps != 0 || w.accSum != 0 {
		t.Fatalf("window was not reset")
	}
	if snap.LastLoss != 0.8 {
		t.Fatalf("expected last loss 0.8, got %.2f", snap.LastLoss)
	}
	if math.Abs(snap.AvgAccuracy-0.6) > 1e-9 {
		t.Fatalf("expected mean accuracy 0.6, got %.4f", snap.AvgAccuracy)
	}
	if math.Abs(snap.AvgDataMS-15) > 1e-9 || math.Abs(snap.AvgComputeMS-15) > 1e-9 {
		t.Fatalf("unexpected timings data=%.2f compute=%.2f", snap.AvgDataMS, snap.AvgComputeMS)
	}
}

func TestWindowEmptySnapshot(t *testing.T) {
	var w Window
	if snap := w.Snapshot(); snap != (Snapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestAccumulatorClose(t *testing.T) {
	var acc Accumulator
	acc.Add(1.0, 0.5)
	acc.Add(0.5, 1.0)
	stats := acc.Close(3)
	if stats.Epoch != 3 || stats.Loss != 0.75 || stats.Accuracy != 0.75 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if acc.Len() != 0 {
		t.Fatal("accumulator not reset")
	}
	if empty := acc.Close(4); empty.Loss != 0 || empty.Accuracy != 0 {
		t.Fatalf("expected zero stats for empty epoch, got %+v", empty)
	}

	var h History
	if _, ok := h.Last(); ok {
		t.Fatal("empty history reported a last epoch")
	}
	h.Epochs = append(h.Epochs, stats)
	if last, ok := h.Last(); !ok || last.Epoch != 3 {
		t.Fatalf("unexpected last epoch %+v", last)
	}
}
