package sink

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truthstream/truthstream/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := model.DefaultConfig().Sink
	cfg.Path = filepath.Join(t.TempDir(), "sink_test.db")
	store, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testClaim(id string) model.VerifiedClaim {
	return model.VerifiedClaim{
		RawClaim: model.RawClaim{
			ID:        id,
			Text:      "NASA discovers water ice deposits on Mars near the equator.",
			Category:  "Science",
			Source:    "Reuters",
			Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		VerificationVerdict: model.VerificationVerdict{
			Verified:    true,
			Credibility: 90,
			Details: model.VerificationDetails{
				SourceTrusted:       true,
				CategoryReliability: 0.80,
				TextLength:          60,
			},
		},
	}
}

func TestStore_UpsertIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	store.now = func() time.Time { return first }
	require.NoError(t, store.Upsert(ctx, testClaim("claim-1")))

	store.now = func() time.Time { return second }
	require.NoError(t, store.Upsert(ctx, testClaim("claim-1")))

	page, err := store.List(ctx, "timestamp", "desc", 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total, "re-delivery must overwrite, not duplicate")

	got, err := store.GetByID(ctx, "claim-1")
	require.NoError(t, err)
	assert.Equal(t, second, got.ProcessedAt, "processed_at must be restamped on overwrite")
	assert.Equal(t, 90, got.Credibility)
	assert.True(t, got.Verified)
	assert.Equal(t, "Science", got.Category)
}

func TestStore_UpsertReplacesPriorDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testClaim("claim-1")))

	updated := testClaim("claim-1")
	updated.Text = "Entirely different text after a policy change."
	updated.Credibility = 40
	updated.Verified = false
	require.NoError(t, store.Upsert(ctx, updated))

	got, err := store.GetByID(ctx, "claim-1")
	require.NoError(t, err)
	assert.Equal(t, updated.Text, got.Text, "last write wins, no merge")
	assert.Equal(t, 40, got.Credibility)
	assert.False(t, got.Verified)
}

func TestStore_UpsertRejectsMalformedDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.VerifiedClaim)
	}{
		{"empty id", func(c *model.VerifiedClaim) { c.ID = "" }},
		{"empty text", func(c *model.VerifiedClaim) { c.Text = "" }},
		{"credibility above range", func(c *model.VerifiedClaim) { c.Credibility = 101 }},
		{"credibility below range", func(c *model.VerifiedClaim) { c.Credibility = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := testClaim("claim-bad")
			tt.mutate(&claim)
			err := store.Upsert(ctx, claim)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRejected), "expected ErrRejected, got %v", err)
			assert.False(t, errors.Is(err, ErrUnavailable))
		})
	}
}

func TestStore_GetByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_SearchWeightsTextAboveCategoryAndSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inText := testClaim("in-text")
	inText.Text = "Quantum computer breakthrough announced by researchers."
	inText.Category = "Technology"
	inText.Source = "BBC"

	inSource := testClaim("in-source")
	inSource.Text = "Markets rallied after the announcement."
	inSource.Category = "Business"
	inSource.Source = "Quantum Daily"
	inSource.Timestamp = inText.Timestamp.Add(time.Hour) // newer, but weaker match

	require.NoError(t, store.Upsert(ctx, inText))
	require.NoError(t, store.Upsert(ctx, inSource))

	page, err := store.Search(ctx, "quantum", 0, 10)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "in-text", page.Claims[0].ID, "text match must outrank source match")
	assert.Equal(t, "in-source", page.Claims[1].ID)
}

func TestStore_SearchEmptyQuery(t *testing.T) {
	store := newTestStore(t)

	page, err := store.Search(context.Background(), "   ", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Claims)
}

func TestStore_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	science := testClaim("science-1")
	health := testClaim("health-1")
	health.Category = "Health"
	health.Verified = false
	health.Credibility = 40

	require.NoError(t, store.Upsert(ctx, science))
	require.NoError(t, store.Upsert(ctx, health))

	byCat, err := store.ByCategory(ctx, "Health", 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, byCat.Total)
	assert.Equal(t, "health-1", byCat.Claims[0].ID)

	verified, err := store.ByVerified(ctx, true, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, verified.Total)
	assert.Equal(t, "science-1", verified.Claims[0].ID)

	unverified, err := store.ByVerified(ctx, false, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, unverified.Total)
	assert.Equal(t, "health-1", unverified.Claims[0].ID)
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testClaim("a") // verified, 90
	b := testClaim("b")
	b.Category = "Health"
	b.Verified = false
	b.Credibility = 30
	c := testClaim("c")
	c.Category = "Health"
	c.Credibility = 60

	for _, claim := range []model.VerifiedClaim{a, b, c} {
		require.NoError(t, store.Upsert(ctx, claim))
	}

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Verified)
	assert.Equal(t, 1, stats.Unverified)
	assert.InDelta(t, 66.67, stats.VerificationRate, 0.01)
	assert.InDelta(t, 60.0, stats.AvgCredibility, 0.01)
	require.Len(t, stats.Categories, 2)
	assert.Equal(t, CategoryCount{Category: "Health", Count: 2}, stats.Categories[0])
	assert.Equal(t, CategoryCount{Category: "Science", Count: 1}, stats.Categories[1])
}

func TestStore_StatsEmptyCorpus(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Zero(t, stats.VerificationRate)
	assert.Zero(t, stats.AvgCredibility)
}

func TestStore_ListPaginationAndSort(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, cred := range []int{10, 50, 90} {
		claim := testClaim(string(rune('a' + i)))
		claim.Credibility = cred
		claim.Verified = cred >= 60
		claim.Timestamp = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Upsert(ctx, claim))
	}

	newest, err := store.List(ctx, "timestamp", "desc", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, newest.Total)
	require.Len(t, newest.Claims, 2)
	assert.Equal(t, "c", newest.Claims[0].ID)

	rest, err := store.List(ctx, "timestamp", "desc", 2, 2)
	require.NoError(t, err)
	require.Len(t, rest.Claims, 1)
	assert.Equal(t, "a", rest.Claims[0].ID)

	byCred, err := store.List(ctx, "credibility", "asc", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, byCred.Claims[0].Credibility)
	assert.Equal(t, 90, byCred.Claims[2].Credibility)
}
