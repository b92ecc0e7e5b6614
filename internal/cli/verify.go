package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/truthstream/truthstream/internal/model"
	"github.com/truthstream/truthstream/internal/pipeline"
	"github.com/truthstream/truthstream/internal/score"
	"github.com/truthstream/truthstream/internal/sink"
)

var (
	verifyCategory string
	verifySource   string
	verifyPolicy   string
	verifyPersist  bool
	verifyTimeout  time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <text>",
	Short: "Score a single claim locally",
	Long: `Verify scores one claim against the credibility policy without going
through the stream. The full scoring breakdown is printed as JSON.

Example:
  truthstream verify "New battery chemistry doubles storage density" --category Technology --source Reuters
  truthstream verify "SHOCKING miracle cure" --category Health --source ClickbaitNews --persist`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyCategory, "category", model.CategoryTechnology, "claim category")
	verifyCmd.Flags().StringVar(&verifySource, "source", "", "claim source (required)")
	verifyCmd.Flags().StringVar(&verifyPolicy, "policy", "", "scoring policy YAML (default: built-in policy)")
	verifyCmd.Flags().BoolVar(&verifyPersist, "persist", false, "write the verdict into the local corpus")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 10*time.Second, "overall timeout")
	_ = verifyCmd.MarkFlagRequired("source")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	policy, err := loadPolicy(verifyPolicy)
	if err != nil {
		return err
	}

	var store pipeline.Sink
	if verifyPersist {
		s, err := sink.Open(cfg.Sink, logger)
		if err != nil {
			return fmt.Errorf("open sink: %w", err)
		}
		defer s.Close() //nolint:errcheck
		store = s
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	p := pipeline.New(score.NewEngine(policy), store, logger)
	verified, err := p.Verify(ctx, model.RawClaim{
		Text:     args[0],
		Category: verifyCategory,
		Source:   verifySource,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(verified); err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n%s (%d/100)\n", model.CredibilityRating(verified.Credibility), verified.Credibility)
	return nil
}
