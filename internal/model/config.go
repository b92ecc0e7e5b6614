package model

import "time"

// Config is the complete runtime configuration, assembled from defaults, the
// config file, TRUTHSTREAM_* environment variables, and CLI flags.
type Config struct {
	Stream    StreamConfig    `yaml:"stream"`
	Sink      SinkConfig      `yaml:"sink"`
	Stats     StatsConfig     `yaml:"stats"`
	API       APIConfig       `yaml:"api"`
	Generator GeneratorConfig `yaml:"generator"`
}

// StreamConfig configures the NATS JetStream transport shared by producers
// and the consumer.
type StreamConfig struct {
	URL           string        `yaml:"url"`            // NATS server URL
	StreamName    string        `yaml:"stream_name"`    // JetStream stream holding claim subjects
	SubjectPrefix string        `yaml:"subject_prefix"` // Claims are published to <prefix>.<partition>
	ConsumerGroup string        `yaml:"consumer_group"` // Durable consumer name prefix shared by all instances
	Partitions    int           `yaml:"partitions"`     // Number of hashed subject buckets
	BatchSize     int           `yaml:"batch_size"`     // Messages fetched per pull
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`  // Max wait for a pull batch
	AckWait       time.Duration `yaml:"ack_wait"`       // Broker redelivery window for unacked messages
	MaxDeliver    int           `yaml:"max_deliver"`    // Redelivery attempts before a message is given up on
	RetryBackoff  time.Duration `yaml:"retry_backoff"`  // Base delay requested on negative acknowledgment
	MaxBackoff    time.Duration `yaml:"max_backoff"`    // Cap for the exponential backoff curve
	DeliverAll    bool          `yaml:"deliver_all"`    // Replay historical backlog instead of only new messages
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

// SinkConfig configures the SQLite document store.
type SinkConfig struct {
	Path          string        `yaml:"path"`           // Database file path
	UpsertTimeout time.Duration `yaml:"upsert_timeout"` // Per-message write deadline
	BusyTimeout   time.Duration `yaml:"busy_timeout"`
}

// StatsConfig configures the throughput aggregator.
type StatsConfig struct {
	ReportEvery int `yaml:"report_every"` // Emit a report every N processed claims
}

// APIConfig configures the HTTP query/submission layer.
type APIConfig struct {
	Addr         string        `yaml:"addr"`
	PageSize     int           `yaml:"page_size"` // Default page size for list endpoints
	CacheTTL     time.Duration `yaml:"cache_ttl"` // Read-side cache TTL for by-id and stats lookups
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// GeneratorConfig configures the synthetic claim producer.
type GeneratorConfig struct {
	Interval time.Duration `yaml:"interval"` // Delay between generated claims
	Rate     float64       `yaml:"rate"`     // Hard cap on publishes per second
	Burst    int           `yaml:"burst"`
	Count    int           `yaml:"count"` // Claims to publish before exiting; 0 means run until interrupted
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Stream: StreamConfig{
			URL:           "nats://localhost:4222",
			StreamName:    "CLAIMS",
			SubjectPrefix: "claims.ingest",
			ConsumerGroup: "news-verification-group",
			Partitions:    4,
			BatchSize:     16,
			FetchTimeout:  5 * time.Second,
			AckWait:       30 * time.Second,
			MaxDeliver:    5,
			RetryBackoff:  time.Second,
			MaxBackoff:    30 * time.Second,
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
		},
		Sink: SinkConfig{
			Path:          "truthstream.db",
			UpsertTimeout: 10 * time.Second,
			BusyTimeout:   5 * time.Second,
		},
		Stats: StatsConfig{
			ReportEvery: 10,
		},
		API: APIConfig{
			Addr:         ":8080",
			PageSize:     20,
			CacheTTL:     10 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Generator: GeneratorConfig{
			Interval: 5 * time.Second,
			Rate:     5,
			Burst:    5,
		},
	}
}
