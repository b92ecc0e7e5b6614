package stream

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/truthstream/truthstream/internal/model"
)

// Publisher sends raw claims into the stream. It is shared by the synthetic
// generator and the HTTP submission endpoint.
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	cfg    model.StreamConfig
	logger *zap.SugaredLogger
}

// NewPublisher connects to NATS and ensures the claims stream exists.
func NewPublisher(cfg model.StreamConfig, logger *zap.SugaredLogger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	nc, err := connect(cfg, "truthstream-producer", logger)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, errors.Wrap(err, "jetstream context")
	}

	if err := ensureStream(js, cfg, logger); err != nil {
		nc.Close()
		return nil, err
	}

	return &Publisher{nc: nc, js: js, cfg: cfg, logger: logger}, nil
}

// Publish routes the claim to its subject bucket. The claim id doubles as the
// JetStream message id, so publish retries inside the duplicate window do not
// enqueue the claim twice.
func (p *Publisher) Publish(ctx context.Context, claim model.RawClaim) error {
	if claim.ID == "" {
		return errors.New("claim id is required")
	}

	payload, err := json.Marshal(claim)
	if err != nil {
		return errors.Wrapf(err, "encode claim %s", claim.ID)
	}

	subject := subjectFor(p.cfg, partitionFor(claim.ID, p.cfg.Partitions))
	if _, err := p.js.Publish(subject, payload, nats.Context(ctx), nats.MsgId(claim.ID)); err != nil {
		return errors.Wrapf(err, "publish claim %s", claim.ID)
	}

	p.logger.Debugw("claim published",
		"id", claim.ID,
		"subject", subject,
		"category", claim.Category,
	)
	return nil
}

// Close flushes and closes the connection.
func (p *Publisher) Close() {
	if err := p.nc.Flush(); err != nil {
		p.logger.Warnw("flush on close", "error", err)
	}
	p.nc.Close()
}
