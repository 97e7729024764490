package orchestration

import (
	"sync"
	"testing"
)

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	if agg := NewProgressAggregator(3); agg == nil || agg.NumWorkers() != 3 {
		t.Fatalf("unexpected aggregator %+v", agg)
	}
	if NewProgressAggregator(0) != nil || NewProgressAggregator(-1) != nil {
		t.Error("expected nil aggregator for non-positive worker counts")
	}
}

func TestProgressAggregator_Update(t *testing.T) {
	t.Parallel()
	agg := NewProgressAggregator(2)

	ap := agg.Update(ProgressUpdate{WorkerIndex: 0, Value: 0.5})
	if ap.WorkerIndex != 0 || ap.Value != 0.5 {
		t.Errorf("unexpected update %+v", ap)
	}
	if ap.AverageProgress != 0.25 {
		t.Errorf("expected AverageProgress=0.25, got %f", ap.AverageProgress)
	}

	agg.Update(ProgressUpdate{WorkerIndex: 1, Value: 1})
	if avg := agg.CalculateAverage(); avg != 0.75 {
		t.Errorf("expected 0.75, got %f", avg)
	}
	if agg.GetETA() < 0 {
		t.Error("ETA should not be negative")
	}
}

func TestNullProgressReporter_Drains(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 3)
	ch <- ProgressUpdate{Value: 0.1}
	ch <- ProgressUpdate{Value: 0.2}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	NullProgressReporter{}.DisplayProgress(&wg, ch, 1, nil)
	wg.Wait()
	if len(ch) != 0 {
		t.Error("channel not drained")
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 2)
	ch <- ProgressUpdate{}
	close(ch)
	DrainChannel(ch)
	if len(ch) != 0 {
		t.Error("channel not drained")
	}
}
