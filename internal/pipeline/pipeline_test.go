package pipeline

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/truthstream/truthstream/internal/model"
	"github.com/truthstream/truthstream/internal/score"
	"github.com/truthstream/truthstream/internal/validate"
)

type recordingSink struct {
	claims []model.VerifiedClaim
	err    error
}

func (s *recordingSink) Upsert(ctx context.Context, claim model.VerifiedClaim) error {
	if s.err != nil {
		return s.err
	}
	s.claims = append(s.claims, claim)
	return nil
}

func TestVerifyScoresAndPersists(t *testing.T) {
	sk := &recordingSink{}
	p := New(score.NewEngine(score.DefaultPolicy()), sk, nil)

	got, err := p.Verify(context.Background(), model.RawClaim{
		Text:     "peer reviewed study replicated the earlier result across three labs",
		Category: model.CategoryScience,
		Source:   "Reuters",
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if got.ID == "" {
		t.Error("expected an assigned id")
	}
	if got.Timestamp.IsZero() {
		t.Error("expected a stamped timestamp")
	}
	if !got.Verified {
		t.Errorf("trusted source science claim should verify, credibility=%d", got.Credibility)
	}
	if len(sk.claims) != 1 || sk.claims[0].ID != got.ID {
		t.Fatalf("expected the verdict persisted, got %+v", sk.claims)
	}
}

func TestVerifyRejectsInvalidSubmission(t *testing.T) {
	p := New(score.NewEngine(score.DefaultPolicy()), &recordingSink{}, nil)

	_, err := p.Verify(context.Background(), model.RawClaim{Category: model.CategoryScience, Source: "Reuters"})
	if !errors.Is(err, validate.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyWithoutSink(t *testing.T) {
	p := New(score.NewEngine(score.DefaultPolicy()), nil, nil)

	got, err := p.Verify(context.Background(), model.RawClaim{
		Text:     "SHOCKING miracle cure doctors hate this secret",
		Category: model.CategoryHealth,
		Source:   "ClickbaitNews",
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Verified {
		t.Errorf("suspicious claim should not verify, credibility=%d", got.Credibility)
	}
}

func TestVerifySurfacesSinkError(t *testing.T) {
	sinkErr := errors.New("disk full")
	p := New(score.NewEngine(score.DefaultPolicy()), &recordingSink{err: sinkErr}, nil)

	_, err := p.Verify(context.Background(), model.RawClaim{
		Text:     "a perfectly ordinary statement about the economy",
		Category: model.CategoryBusiness,
		Source:   "Bloomberg",
	})
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error surfaced, got %v", err)
	}
}
