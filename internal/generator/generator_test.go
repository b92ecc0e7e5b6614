package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/truthstream/truthstream/internal/model"
)

type captivePublisher struct {
	claims []model.RawClaim
}

func (p *captivePublisher) Publish(ctx context.Context, claim model.RawClaim) error {
	p.claims = append(p.claims, claim)
	return nil
}

func TestGenerator_NextProducesCompleteClaims(t *testing.T) {
	g := New(&captivePublisher{}, model.GeneratorConfig{}, nil)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		claim := g.Next()

		if claim.ID == "" {
			t.Fatal("expected a generated id")
		}
		if seen[claim.ID] {
			t.Fatalf("duplicate id generated: %s", claim.ID)
		}
		seen[claim.ID] = true

		if claim.Text == "" {
			t.Error("expected non-empty text")
		}
		if strings.Contains(claim.Text, "{") || strings.Contains(claim.Text, "}") {
			t.Errorf("unsubstituted placeholder in %q", claim.Text)
		}
		if _, ok := templates[claim.Category]; !ok {
			t.Errorf("unknown category %q", claim.Category)
		}
		if claim.Source == "" {
			t.Error("expected a source")
		}
		if claim.Timestamp.IsZero() {
			t.Error("expected a timestamp")
		}
		if claim.UserSubmitted {
			t.Error("generated claims must not be flagged user-submitted")
		}
	}
}

func TestGenerator_RunHonorsCount(t *testing.T) {
	pub := &captivePublisher{}
	g := New(pub, model.GeneratorConfig{Interval: 1, Count: 3}, nil)

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pub.claims) != 3 {
		t.Errorf("expected 3 published claims, got %d", len(pub.claims))
	}
}

func TestGenerator_RunStopsOnCancel(t *testing.T) {
	pub := &captivePublisher{}
	g := New(pub, model.GeneratorConfig{Interval: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run after cancel: %v", err)
	}
}

func TestTemplateTablesAreConsistent(t *testing.T) {
	for category := range templates {
		if _, ok := categorySources[category]; !ok {
			t.Errorf("category %q has templates but no sources", category)
		}
	}
	for category, tmpls := range templates {
		for _, tmpl := range tmpls {
			for _, match := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
				if _, ok := placeholders[match[1]]; !ok {
					t.Errorf("template %q in %s references unknown placeholder %q", tmpl, category, match[1])
				}
			}
		}
	}
}
