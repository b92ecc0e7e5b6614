// Package generator produces synthetic claims for load and demo purposes.
// It is just another producer into the claim stream; the pipeline treats its
// output no differently from user-submitted claims.
package generator

import (
	"context"
	"math/rand"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/truthstream/truthstream/internal/model"
)

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Publisher is the stream surface the generator writes to.
type Publisher interface {
	Publish(ctx context.Context, claim model.RawClaim) error
}

// Generator emits template-based random claims at a bounded rate.
type Generator struct {
	publisher  Publisher
	logger     *zap.SugaredLogger
	limiter    *rate.Limiter
	rng        *rand.Rand
	categories []string
	interval   time.Duration
	count      int
}

// New creates a generator. count 0 runs until the context is canceled.
func New(publisher Publisher, cfg model.GeneratorConfig, logger *zap.SugaredLogger) *Generator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	categories := make([]string, 0, len(templates))
	for category := range templates {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	limit := rate.Limit(cfg.Rate)
	if cfg.Rate <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Generator{
		publisher:  publisher,
		logger:     logger,
		limiter:    rate.NewLimiter(limit, burst),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		categories: categories,
		interval:   cfg.Interval,
		count:      cfg.Count,
	}
}

// Next builds one random claim.
func (g *Generator) Next() model.RawClaim {
	category := g.categories[g.rng.Intn(len(g.categories))]
	sources := categorySources[category]
	categoryTemplates := templates[category]

	template := categoryTemplates[g.rng.Intn(len(categoryTemplates))]
	text := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		values, ok := placeholders[key]
		if !ok {
			return match
		}
		return values[g.rng.Intn(len(values))]
	})

	return model.RawClaim{
		ID:        uuid.NewString(),
		Text:      text,
		Category:  category,
		Source:    sources[g.rng.Intn(len(sources))],
		Timestamp: time.Now().UTC(),
	}
}

// Run publishes claims until the configured count is reached or the context
// is canceled. The interval paces steady output; the rate limiter is a hard
// cap protecting the broker when the interval is set aggressively low.
func (g *Generator) Run(ctx context.Context) error {
	interval := g.interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	published := 0
	for {
		select {
		case <-ctx.Done():
			g.logger.Infow("generator stopped", "published", published)
			return nil
		case <-ticker.C:
		}

		if err := g.limiter.Wait(ctx); err != nil {
			g.logger.Infow("generator stopped", "published", published)
			return nil
		}

		claim := g.Next()
		if err := g.publisher.Publish(ctx, claim); err != nil {
			g.logger.Errorw("publish failed", "id", claim.ID, "error", err)
			continue
		}
		published++
		g.logger.Infow("claim published",
			"category", claim.Category,
			"source", claim.Source,
			"text", truncate(claim.Text, 60),
		)

		if g.count > 0 && published >= g.count {
			g.logger.Infow("generator finished", "published", published)
			return nil
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
