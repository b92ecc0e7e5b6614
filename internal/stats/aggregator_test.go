package stats

import (
	"math"
	"sync"
	"testing"
)

func TestAggregator_Counts(t *testing.T) {
	agg := New(nil, 10)

	// 7 verified, 2 unverified, 1 error: processed excludes the error.
	for i := 0; i < 7; i++ {
		agg.RecordVerified()
	}
	for i := 0; i < 2; i++ {
		agg.RecordUnverified()
	}
	agg.RecordError()

	r := agg.Report()

	if r.Processed != 9 {
		t.Errorf("expected processed=9, got %d", r.Processed)
	}
	if r.Verified != 7 || r.Unverified != 2 || r.Errors != 1 {
		t.Errorf("unexpected counts: %+v", r)
	}
	if math.Abs(r.VerifiedPct-77.8) > 0.05 {
		t.Errorf("expected verified pct ~77.8, got %.2f", r.VerifiedPct)
	}
	if math.Abs(r.UnverifiedPct-22.2) > 0.05 {
		t.Errorf("expected unverified pct ~22.2, got %.2f", r.UnverifiedPct)
	}
}

func TestAggregator_ZeroProcessed(t *testing.T) {
	agg := New(nil, 10)
	agg.RecordError()

	r := agg.Report()

	if r.Processed != 0 {
		t.Errorf("expected processed=0, got %d", r.Processed)
	}
	if r.VerifiedPct != 0 || r.UnverifiedPct != 0 {
		t.Errorf("expected zero percentages without processed claims, got %+v", r)
	}
}

func TestAggregator_ConcurrentIncrements(t *testing.T) {
	agg := New(nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				agg.RecordVerified()
				agg.RecordUnverified()
				agg.RecordError()
			}
		}()
	}
	wg.Wait()

	r := agg.Report()
	if r.Processed != 16000 {
		t.Errorf("expected processed=16000, got %d", r.Processed)
	}
	if r.Verified != 8000 || r.Unverified != 8000 || r.Errors != 8000 {
		t.Errorf("unexpected counts: %+v", r)
	}
}
