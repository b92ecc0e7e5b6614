// Package stream carries raw claims over NATS JetStream.
//
// Key-based partitioning is modeled with hashed subject buckets: a claim id
// always routes to the same subject, and the consumer runs one strictly
// sequential worker per bucket, so re-delivery of a claim is never reordered
// relative to itself.
package stream

import (
	"fmt"
	"hash/fnv"

	"github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/truthstream/truthstream/internal/model"
)

// partitionFor maps a claim id to its subject bucket.
func partitionFor(id string, partitions int) int {
	if partitions <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(partitions))
}

// subjectFor returns the full subject for one partition.
func subjectFor(cfg model.StreamConfig, partition int) string {
	return fmt.Sprintf("%s.%d", cfg.SubjectPrefix, partition)
}

// connect dials NATS with the reconnect behavior shared by producers and the
// consumer.
func connect(cfg model.StreamConfig, name string, logger *zap.SugaredLogger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Errorw("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infow("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Errorw("nats error", "error", err)
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", cfg.URL)
	}
	return nc, nil
}

// ensureStream creates the claims stream if it does not exist yet.
func ensureStream(js nats.JetStreamContext, cfg model.StreamConfig, logger *zap.SugaredLogger) error {
	streamConfig := &nats.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{cfg.SubjectPrefix + ".*"},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
	}

	_, err := js.StreamInfo(cfg.StreamName)
	if errors.Is(err, nats.ErrStreamNotFound) {
		if _, err := js.AddStream(streamConfig); err != nil {
			return errors.Wrap(err, "create stream")
		}
		logger.Infow("created jetstream stream", "name", cfg.StreamName)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "stream info")
	}
	return nil
}
