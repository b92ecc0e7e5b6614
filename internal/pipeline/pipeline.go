// Package pipeline wires the scoring engine and the sink into a one-shot
// verification path. The stream consumer is the production entry point; the
// pipeline backs the local verify command, where a claim is scored and
// persisted without a broker in between.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truthstream/truthstream/internal/model"
	"github.com/truthstream/truthstream/internal/score"
	"github.com/truthstream/truthstream/internal/validate"
)

// Sink persists verified claims. *sink.Store satisfies it.
type Sink interface {
	Upsert(ctx context.Context, claim model.VerifiedClaim) error
}

// Pipeline scores claims and optionally persists the verdicts.
type Pipeline struct {
	engine *score.Engine
	sink   Sink
	logger *zap.SugaredLogger
}

// New creates a pipeline. sink may be nil for score-only runs.
func New(engine *score.Engine, sink Sink, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{engine: engine, sink: sink, logger: logger}
}

// Verify validates, scores, and persists a single claim. A missing ID is
// assigned; a zero timestamp is stamped with the current time.
func (p *Pipeline) Verify(ctx context.Context, claim model.RawClaim) (model.VerifiedClaim, error) {
	if err := validate.Submission(claim.Text, claim.Category, claim.Source); err != nil {
		return model.VerifiedClaim{}, err
	}
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}
	if claim.Timestamp.IsZero() {
		claim.Timestamp = time.Now().UTC()
	}

	verified := model.VerifiedClaim{
		RawClaim:            claim,
		VerificationVerdict: p.engine.Score(claim),
	}

	if p.sink != nil {
		if err := p.sink.Upsert(ctx, verified); err != nil {
			return model.VerifiedClaim{}, err
		}
	}

	p.logger.Debugw("claim verified",
		"id", claim.ID,
		"credibility", verified.Credibility,
		"rating", model.CredibilityRating(verified.Credibility),
		"verified", verified.Verified,
	)
	return verified, nil
}
