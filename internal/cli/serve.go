package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/truthstream/truthstream/internal/api"
	"github.com/truthstream/truthstream/internal/sink"
	"github.com/truthstream/truthstream/internal/stream"
)

var (
	serveAddr string
	readOnly  bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verified-claim API",
	Long: `Serve the HTTP API over the verified-claim corpus: paginated listing,
full-text search, category and verification filters, corpus statistics,
and claim submission.

Submissions are published onto the claim stream and become readable once
the pipeline has verified them. With --read-only the server skips the
stream connection and rejects submissions.

Example:
  truthstream serve
  truthstream serve --addr :9090 --read-only`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&readOnly, "read-only", false, "serve queries only, without a stream connection")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.API.Addr = serveAddr
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, err := sink.Open(cfg.Sink, logger)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer store.Close() //nolint:errcheck

	var publisher api.Publisher
	if !readOnly {
		p, err := stream.NewPublisher(cfg.Stream, logger)
		if err != nil {
			return fmt.Errorf("connect stream: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	handler := api.New(store, publisher, cfg.API, logger)
	server := api.NewServer(handler, cfg.API, logger)
	return server.Run(ctx)
}
