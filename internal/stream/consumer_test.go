package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/truthstream/truthstream/internal/model"
	"github.com/truthstream/truthstream/internal/score"
	"github.com/truthstream/truthstream/internal/sink"
	"github.com/truthstream/truthstream/internal/stats"
)

// fakeSink implements Sink and records writes.
type fakeSink struct {
	upserts []model.VerifiedClaim
	err     error
}

func (f *fakeSink) Upsert(ctx context.Context, claim model.VerifiedClaim) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, claim)
	return nil
}

func newTestConsumer(sk Sink) (*Consumer, *stats.Aggregator) {
	cfg := model.DefaultConfig()
	agg := stats.New(nil, 0)
	c := NewConsumer(cfg, score.NewEngine(score.DefaultPolicy()), sk, agg, nil)
	return c, agg
}

func claimPayload(t *testing.T, claim model.RawClaim) []byte {
	t.Helper()
	data, err := json.Marshal(claim)
	if err != nil {
		t.Fatalf("marshal claim: %v", err)
	}
	return data
}

func TestHandle_VerifiedClaimIsAcked(t *testing.T) {
	sk := &fakeSink{}
	c, agg := newTestConsumer(sk)

	payload := claimPayload(t, model.RawClaim{
		ID:        "c1",
		Text:      "Researchers published new measurement data for peer reviews.",
		Category:  "Science",
		Source:    "Reuters",
		Timestamp: time.Now().UTC(),
	})

	if got := c.handle(payload); got != outcomeAck {
		t.Fatalf("expected outcomeAck, got %v", got)
	}

	if len(sk.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(sk.upserts))
	}
	if !sk.upserts[0].Verified {
		t.Error("expected claim to be verified")
	}

	r := agg.Report()
	if r.Processed != 1 || r.Verified != 1 || r.Errors != 0 {
		t.Errorf("unexpected stats: %+v", r)
	}
}

func TestHandle_UnverifiedClaimIsAcked(t *testing.T) {
	sk := &fakeSink{}
	c, agg := newTestConsumer(sk)

	payload := claimPayload(t, model.RawClaim{
		ID:       "c2",
		Text:     "SHOCKING miracle cure they don't want you to know about!!!",
		Category: "Health",
		Source:   "ClickbaitNews",
	})

	if got := c.handle(payload); got != outcomeAck {
		t.Fatalf("expected outcomeAck, got %v", got)
	}

	r := agg.Report()
	if r.Processed != 1 || r.Unverified != 1 {
		t.Errorf("unexpected stats: %+v", r)
	}
}

func TestHandle_DecodeErrorIsTerminated(t *testing.T) {
	sk := &fakeSink{}
	c, agg := newTestConsumer(sk)

	if got := c.handle([]byte("{not json")); got != outcomeTerm {
		t.Fatalf("expected outcomeTerm, got %v", got)
	}

	if len(sk.upserts) != 0 {
		t.Error("decode failure must not reach the sink")
	}
	r := agg.Report()
	if r.Errors != 1 || r.Processed != 0 {
		t.Errorf("decode failure must count as error, not processed: %+v", r)
	}
}

func TestHandle_RejectedClaimIsTerminated(t *testing.T) {
	sk := &fakeSink{err: sink.ErrRejected}
	c, agg := newTestConsumer(sk)

	payload := claimPayload(t, model.RawClaim{ID: "c3", Text: "x", Category: "Sports", Source: "y"})

	if got := c.handle(payload); got != outcomeTerm {
		t.Fatalf("expected outcomeTerm, got %v", got)
	}
	r := agg.Report()
	if r.Errors != 1 || r.Processed != 0 {
		t.Errorf("rejected claim must count as error, not processed: %+v", r)
	}
}

func TestHandle_UnavailableSinkIsRetried(t *testing.T) {
	sk := &fakeSink{err: sink.ErrUnavailable}
	c, agg := newTestConsumer(sk)

	payload := claimPayload(t, model.RawClaim{ID: "c4", Text: "x", Category: "Sports", Source: "y"})

	if got := c.handle(payload); got != outcomeRetry {
		t.Fatalf("expected outcomeRetry, got %v", got)
	}
	r := agg.Report()
	if r.Errors != 0 || r.Processed != 0 {
		t.Errorf("a retried claim must not be counted yet: %+v", r)
	}
}

func TestPartitionFor_StableAndInRange(t *testing.T) {
	ids := []string{"a", "b", "claim-123", "b2f9", ""}
	for _, id := range ids {
		first := partitionFor(id, 4)
		if first < 0 || first >= 4 {
			t.Errorf("partition out of range for %q: %d", id, first)
		}
		for i := 0; i < 10; i++ {
			if got := partitionFor(id, 4); got != first {
				t.Errorf("partition for %q not stable: %d vs %d", id, got, first)
			}
		}
	}

	if got := partitionFor("anything", 1); got != 0 {
		t.Errorf("single partition must always route to 0, got %d", got)
	}
}

func TestRetryDelay_ExponentialWithCap(t *testing.T) {
	cfg := model.StreamConfig{RetryBackoff: time.Second, MaxBackoff: 10 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped
		{9, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := retryDelay(cfg, tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}
}

func TestConsumerStateString(t *testing.T) {
	want := map[State]string{
		StateIdle:         "idle",
		StateSubscribed:   "subscribed",
		StatePolling:      "polling",
		StateProcessing:   "processing",
		StateShuttingDown: "shutting-down",
		StateStopped:      "stopped",
	}
	for state, name := range want {
		if state.String() != name {
			t.Errorf("State(%d).String() = %q, want %q", state, state.String(), name)
		}
	}
}

func TestNewConsumerStartsIdle(t *testing.T) {
	c, _ := newTestConsumer(&fakeSink{})
	if c.State() != StateIdle {
		t.Errorf("expected idle before Start, got %v", c.State())
	}
}
