package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/truthstream/truthstream/internal/generator"
	"github.com/truthstream/truthstream/internal/stream"
)

var (
	genCount    int
	genInterval time.Duration
	genRate     float64
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Publish synthetic claims onto the stream",
	Long: `Generate template-based random claims and publish them onto the claim
stream. Useful for demos and for exercising the pipeline under load.

Example:
  truthstream generate
  truthstream generate --count 100 --interval 200ms
  truthstream generate --rate 50`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&genCount, "count", 0, "number of claims to publish (0 = until interrupted)")
	generateCmd.Flags().DurationVar(&genInterval, "interval", 0, "delay between claims (default from config)")
	generateCmd.Flags().Float64Var(&genRate, "rate", 0, "hard cap on claims per second (default from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if genCount > 0 {
		cfg.Generator.Count = genCount
	}
	if genInterval > 0 {
		cfg.Generator.Interval = genInterval
	}
	if genRate > 0 {
		cfg.Generator.Rate = genRate
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	publisher, err := stream.NewPublisher(cfg.Stream, logger)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer publisher.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gen := generator.New(publisher, cfg.Generator, logger)
	return gen.Run(ctx)
}
