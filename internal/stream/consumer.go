package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/truthstream/truthstream/internal/model"
	"github.com/truthstream/truthstream/internal/score"
	"github.com/truthstream/truthstream/internal/sink"
	"github.com/truthstream/truthstream/internal/stats"
)

// State describes where the consumer is in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateSubscribed
	StatePolling
	StateProcessing
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscribed:
		return "subscribed"
	case StatePolling:
		return "polling"
	case StateProcessing:
		return "processing"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Sink is the persistence surface the consumer writes verdicts to.
type Sink interface {
	Upsert(ctx context.Context, claim model.VerifiedClaim) error
}

// outcome is the resolution of a single message.
type outcome int

const (
	outcomeAck   outcome = iota // processed, commit progress
	outcomeTerm                 // permanent failure, commit and drop
	outcomeRetry                // transient failure, leave for redelivery
)

// Consumer pulls claim batches from the stream, scores them and persists the
// verdicts. One worker runs per subject bucket; within a bucket messages are
// processed strictly sequentially, so progress never advances past an
// uncommitted message.
type Consumer struct {
	logger        *zap.SugaredLogger
	cfg           model.StreamConfig
	upsertTimeout time.Duration
	engine        *score.Engine
	sink          Sink
	stats         *stats.Aggregator

	nc   *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription

	lifecycle    atomic.Int32
	workerStates []atomic.Int32
	wg           sync.WaitGroup
}

// NewConsumer wires a consumer. No I/O happens until Start.
func NewConsumer(cfg *model.Config, engine *score.Engine, sk Sink, agg *stats.Aggregator, logger *zap.SugaredLogger) *Consumer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	upsertTimeout := cfg.Sink.UpsertTimeout
	if upsertTimeout <= 0 {
		upsertTimeout = 10 * time.Second
	}
	return &Consumer{
		logger:        logger,
		cfg:           cfg.Stream,
		upsertTimeout: upsertTimeout,
		engine:        engine,
		sink:          sk,
		stats:         agg,
	}
}

// State reports the consumer's current lifecycle state. While subscribed it
// reflects the busiest worker: processing wins over polling.
func (c *Consumer) State() State {
	lifecycle := State(c.lifecycle.Load())
	if lifecycle != StateSubscribed {
		return lifecycle
	}
	state := StatePolling
	for i := range c.workerStates {
		if State(c.workerStates[i].Load()) == StateProcessing {
			state = StateProcessing
			break
		}
	}
	return state
}

// Start subscribes and processes messages until ctx is canceled, then shuts
// down gracefully: in-flight work completes, a final stats report is emitted,
// and the durable consumers keep their progress for the next run.
//
// A failure to establish the initial subscription is returned as an error;
// the process has no useful work without one.
func (c *Consumer) Start(ctx context.Context) error {
	nc, err := connect(c.cfg, "truthstream-consumer", c.logger)
	if err != nil {
		return err
	}
	c.nc = nc

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return errors.Wrap(err, "jetstream context")
	}
	c.js = js

	if err := ensureStream(js, c.cfg, c.logger); err != nil {
		nc.Close()
		return err
	}

	partitions := c.cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	c.workerStates = make([]atomic.Int32, partitions)
	c.subs = make([]*nats.Subscription, 0, partitions)

	for p := 0; p < partitions; p++ {
		sub, err := c.subscribePartition(p)
		if err != nil {
			nc.Close()
			return errors.Wrapf(err, "subscribe partition %d", p)
		}
		c.subs = append(c.subs, sub)
	}

	c.lifecycle.Store(int32(StateSubscribed))
	c.logger.Infow("subscribed to claim stream",
		"stream", c.cfg.StreamName,
		"subjects", c.cfg.SubjectPrefix+".*",
		"group", c.cfg.ConsumerGroup,
		"partitions", partitions,
	)

	for p := 0; p < partitions; p++ {
		c.wg.Add(1)
		go c.worker(ctx, p, c.subs[p])
	}

	<-ctx.Done()

	c.lifecycle.Store(int32(StateShuttingDown))
	c.logger.Info("shutdown requested, finishing in-flight work")
	c.wg.Wait()

	c.stats.ReportFinal()

	// Durable consumers are left in place so a restart resumes from the
	// shared progress checkpoints.
	c.nc.Close()
	c.lifecycle.Store(int32(StateStopped))
	c.logger.Info("consumer stopped")
	return nil
}

// subscribePartition ensures the partition's durable consumer exists and
// binds a pull subscription to it.
func (c *Consumer) subscribePartition(partition int) (*nats.Subscription, error) {
	subject := subjectFor(c.cfg, partition)
	durable := fmt.Sprintf("%s-%d", c.cfg.ConsumerGroup, partition)

	deliverPolicy := nats.DeliverNewPolicy
	if c.cfg.DeliverAll {
		deliverPolicy = nats.DeliverAllPolicy
	}

	_, err := c.js.ConsumerInfo(c.cfg.StreamName, durable)
	if errors.Is(err, nats.ErrConsumerNotFound) {
		_, err = c.js.AddConsumer(c.cfg.StreamName, &nats.ConsumerConfig{
			Durable:       durable,
			DeliverPolicy: deliverPolicy,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       c.cfg.AckWait,
			MaxDeliver:    c.cfg.MaxDeliver,
			FilterSubject: subject,
			MaxAckPending: c.cfg.BatchSize,
			ReplayPolicy:  nats.ReplayInstantPolicy,
		})
		if err != nil {
			return nil, errors.Wrap(err, "create consumer")
		}
		c.logger.Infow("created durable consumer", "name", durable, "subject", subject)
	} else if err != nil {
		return nil, errors.Wrap(err, "consumer info")
	}

	return c.js.PullSubscribe(subject, durable)
}

// worker is the per-partition loop: fetch a batch, process it sequentially,
// repeat. Shutdown is observed between messages, never mid-message.
func (c *Consumer) worker(ctx context.Context, partition int, sub *nats.Subscription) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.workerStates[partition].Store(int32(StatePolling))
		msgs, err := sub.Fetch(c.cfg.BatchSize, nats.MaxWait(c.cfg.FetchTimeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue // nothing available, keep polling
			}
			if ctx.Err() != nil {
				return
			}
			c.logger.Errorw("fetch failed", "partition", partition, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.workerStates[partition].Store(int32(StateProcessing))
		for _, msg := range msgs {
			c.processMessage(msg)
			if ctx.Err() != nil {
				// Remaining fetched messages stay unacked and will be
				// redelivered after AckWait.
				return
			}
		}
	}
}

// processMessage resolves one message and commits progress accordingly.
func (c *Consumer) processMessage(msg *nats.Msg) {
	switch c.handle(msg.Data) {
	case outcomeAck:
		if err := msg.Ack(); err != nil {
			c.logger.Warnw("ack failed", "subject", msg.Subject, "error", err)
		}
	case outcomeTerm:
		if err := msg.Term(); err != nil {
			c.logger.Warnw("term failed", "subject", msg.Subject, "error", err)
		}
	case outcomeRetry:
		c.retryLater(msg)
	}
}

// retryLater negatively acknowledges the message with an explicit backoff,
// unless the broker has already delivered it the maximum number of times, in
// which case it is given up on to bound reprocessing storms.
func (c *Consumer) retryLater(msg *nats.Msg) {
	attempt := 1
	if meta, err := msg.Metadata(); err == nil {
		attempt = int(meta.NumDelivered)
		if c.cfg.MaxDeliver > 0 && meta.NumDelivered >= uint64(c.cfg.MaxDeliver) {
			c.logger.Errorw("giving up after max deliveries",
				"subject", msg.Subject,
				"deliveries", meta.NumDelivered,
			)
			c.stats.RecordError()
			if err := msg.Ack(); err != nil {
				c.logger.Warnw("ack failed", "subject", msg.Subject, "error", err)
			}
			return
		}
	}

	delay := retryDelay(c.cfg, attempt)
	if err := msg.NakWithDelay(delay); err != nil {
		c.logger.Warnw("nak failed", "subject", msg.Subject, "error", err)
	}
}

// retryDelay computes the exponential backoff for the given delivery attempt
// (1-based), capped at the configured maximum.
func retryDelay(cfg model.StreamConfig, attempt int) time.Duration {
	delay := cfg.RetryBackoff
	if delay <= 0 {
		delay = time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if cfg.MaxBackoff > 0 && delay >= cfg.MaxBackoff {
			return cfg.MaxBackoff
		}
	}
	if cfg.MaxBackoff > 0 && delay > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return delay
}

// handle decodes, scores and persists one claim payload. The scoring step is
// total; only decoding and persistence can fail.
//
// The upsert runs under its own deadline derived from the background context
// so that an in-flight message still completes during shutdown; a deadline
// expiry feeds the same retry path as any other sink outage.
func (c *Consumer) handle(data []byte) outcome {
	var claim model.RawClaim
	if err := json.Unmarshal(data, &claim); err != nil {
		c.logger.Errorw("failed to decode claim payload", "error", err)
		c.stats.RecordError()
		return outcomeTerm
	}

	verdict := c.engine.Score(claim)

	ctx, cancel := context.WithTimeout(context.Background(), c.upsertTimeout)
	defer cancel()

	err := c.sink.Upsert(ctx, model.VerifiedClaim{
		RawClaim:            claim,
		VerificationVerdict: verdict,
	})
	switch {
	case err == nil:
		if verdict.Verified {
			c.stats.RecordVerified()
		} else {
			c.stats.RecordUnverified()
		}
		c.logger.Debugw("claim processed",
			"id", claim.ID,
			"category", claim.Category,
			"credibility", verdict.Credibility,
			"rating", model.CredibilityRating(verdict.Credibility),
			"verified", verdict.Verified,
		)
		return outcomeAck
	case errors.Is(err, sink.ErrRejected):
		c.logger.Errorw("claim rejected by sink", "id", claim.ID, "error", err)
		c.stats.RecordError()
		return outcomeTerm
	default:
		c.logger.Warnw("sink unavailable, leaving claim for redelivery",
			"id", claim.ID,
			"error", err,
		)
		return outcomeRetry
	}
}
