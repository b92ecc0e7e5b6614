package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/truthstream/truthstream/internal/score"
	"github.com/truthstream/truthstream/internal/sink"
	"github.com/truthstream/truthstream/internal/stats"
	"github.com/truthstream/truthstream/internal/stream"
)

var (
	policyFile  string
	fromStart   bool
	consumerTag string
)

// consumeCmd represents the consume command
var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the claim verification pipeline",
	Long: `Consume claims from the stream, score each one against the credibility
policy, and persist the verdicts into the local corpus.

The consumer is part of a durable group: restarts resume from the last
acknowledged claim, and multiple instances split the subject partitions
between them.

Example:
  truthstream consume
  truthstream consume --from-start
  truthstream consume --policy strict-policy.yaml`,
	RunE: runConsume,
}

func init() {
	rootCmd.AddCommand(consumeCmd)

	consumeCmd.Flags().StringVar(&policyFile, "policy", "", "scoring policy YAML (default: built-in policy)")
	consumeCmd.Flags().BoolVar(&fromStart, "from-start", false, "replay the stream from the first retained claim")
	consumeCmd.Flags().StringVar(&consumerTag, "group", "", "override the durable consumer group name")
}

func runConsume(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if fromStart {
		cfg.Stream.DeliverAll = true
	}
	if consumerTag != "" {
		cfg.Stream.ConsumerGroup = consumerTag
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	policy, err := loadPolicy(policyFile)
	if err != nil {
		return err
	}

	store, err := sink.Open(cfg.Sink, logger)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer store.Close() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine := score.NewEngine(policy)
	agg := stats.New(logger, cfg.Stats.ReportEvery)
	consumer := stream.NewConsumer(cfg, engine, store, agg, logger)

	logger.Infow("pipeline starting",
		"stream", cfg.Stream.StreamName,
		"group", cfg.Stream.ConsumerGroup,
		"partitions", cfg.Stream.Partitions,
		"sink", cfg.Sink.Path,
	)

	return consumer.Start(ctx)
}

// loadPolicy reads a scoring policy from YAML, or returns the built-in one.
func loadPolicy(path string) (score.Policy, error) {
	if path == "" {
		return score.DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return score.Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}

	policy := score.DefaultPolicy()
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return score.Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return policy, nil
}
