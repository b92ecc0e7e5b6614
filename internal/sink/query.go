package sink

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/truthstream/truthstream/internal/model"
)

const claimColumns = `
	id, text, category, source, timestamp, user_submitted,
	verified, credibility, source_trusted, source_suspicious,
	suspicious_keyword_count, category_reliability, text_length, processed_at`

// Page is one page of query results plus the total match count.
type Page struct {
	Total  int                   `json:"total"`
	Claims []model.VerifiedClaim `json:"claims"`
}

// Stats aggregates the whole corpus for the dashboard.
type Stats struct {
	Total            int             `json:"total"`
	Verified         int             `json:"verified"`
	Unverified       int             `json:"unverified"`
	VerificationRate float64         `json:"verificationRate"` // percent, 0 when empty
	AvgCredibility   float64         `json:"avgCredibility"`
	Categories       []CategoryCount `json:"categoryDistribution"`
}

// CategoryCount is one bucket of the per-category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// GetByID fetches a single claim document, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (model.VerifiedClaim, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+claimColumns+` FROM claims WHERE id = ?`, id)
	claim, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VerifiedClaim{}, errors.Mark(errors.Newf("claim %s", id), ErrNotFound)
	}
	if err != nil {
		return model.VerifiedClaim{}, errors.Mark(err, ErrUnavailable)
	}
	return claim, nil
}

// List returns a page of claims. sortBy is restricted to a whitelist of
// columns; anything else falls back to timestamp.
func (s *Store) List(ctx context.Context, sortBy, order string, offset, limit int) (Page, error) {
	column := "timestamp"
	if sortBy == "credibility" || sortBy == "processed_at" {
		column = sortBy
	}
	direction := "DESC"
	if strings.EqualFold(order, "asc") {
		direction = "ASC"
	}

	query := `SELECT` + claimColumns + ` FROM claims ORDER BY ` + column + ` ` + direction + ` LIMIT ? OFFSET ?`
	return s.page(ctx, `SELECT COUNT(*) FROM claims`, nil, query, []any{limit, offset})
}

// Search runs weighted full-text search: matches in text rank above matches
// in category, which rank above matches in source.
func (s *Store) Search(ctx context.Context, query string, offset, limit int) (Page, error) {
	match := ftsQuery(query)
	if match == "" {
		return Page{Claims: []model.VerifiedClaim{}}, nil
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	sel := `SELECT` + claimColumns + ` FROM claims
		WHERE rowid IN (SELECT docid FROM claims_fts WHERE claims_fts MATCH ?)
		ORDER BY (instr(lower(text), ?) > 0) * 3
			+ (instr(lower(category), ?) > 0) * 2
			+ (instr(lower(source), ?) > 0) DESC,
			timestamp DESC
		LIMIT ? OFFSET ?`
	count := `SELECT COUNT(*) FROM claims
		WHERE rowid IN (SELECT docid FROM claims_fts WHERE claims_fts MATCH ?)`

	return s.page(ctx, count, []any{match}, sel, []any{match, needle, needle, needle, limit, offset})
}

// ByCategory returns claims with an exact category match, newest first.
func (s *Store) ByCategory(ctx context.Context, category string, offset, limit int) (Page, error) {
	sel := `SELECT` + claimColumns + ` FROM claims WHERE category = ? ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	return s.page(ctx, `SELECT COUNT(*) FROM claims WHERE category = ?`, []any{category}, sel, []any{category, limit, offset})
}

// ByVerified returns claims filtered on the verdict boolean, newest first.
func (s *Store) ByVerified(ctx context.Context, verified bool, offset, limit int) (Page, error) {
	sel := `SELECT` + claimColumns + ` FROM claims WHERE verified = ? ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	return s.page(ctx, `SELECT COUNT(*) FROM claims WHERE verified = ?`, []any{verified}, sel, []any{verified, limit, offset})
}

// Stats computes corpus-wide aggregates.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(verified), 0),
		       COALESCE(AVG(credibility), 0)
		FROM claims`)
	if err := row.Scan(&st.Total, &st.Verified, &st.AvgCredibility); err != nil {
		return Stats{}, errors.Mark(errors.Wrap(err, "aggregate counts"), ErrUnavailable)
	}
	st.Unverified = st.Total - st.Verified
	if st.Total > 0 {
		st.VerificationRate = float64(st.Verified) / float64(st.Total) * 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM claims
		GROUP BY category
		ORDER BY COUNT(*) DESC, category ASC`)
	if err != nil {
		return Stats{}, errors.Mark(errors.Wrap(err, "category distribution"), ErrUnavailable)
	}
	defer rows.Close()

	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return Stats{}, errors.Mark(errors.Wrap(err, "scan category"), ErrUnavailable)
		}
		st.Categories = append(st.Categories, cc)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, errors.Mark(err, ErrUnavailable)
	}
	return st, nil
}

// page runs a count query plus a select query and assembles a Page.
func (s *Store) page(ctx context.Context, countQuery string, countArgs []any, selQuery string, selArgs []any) (Page, error) {
	var p Page
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&p.Total); err != nil {
		return Page{}, errors.Mark(errors.Wrap(err, "count"), ErrUnavailable)
	}

	rows, err := s.db.QueryContext(ctx, selQuery, selArgs...)
	if err != nil {
		return Page{}, errors.Mark(errors.Wrap(err, "select"), ErrUnavailable)
	}
	defer rows.Close()

	p.Claims = []model.VerifiedClaim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return Page{}, errors.Mark(err, ErrUnavailable)
		}
		p.Claims = append(p.Claims, claim)
	}
	if err := rows.Err(); err != nil {
		return Page{}, errors.Mark(err, ErrUnavailable)
	}
	return p, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(sc scanner) (model.VerifiedClaim, error) {
	var (
		claim                  model.VerifiedClaim
		timestamp, processedAt string
	)
	err := sc.Scan(
		&claim.ID,
		&claim.Text,
		&claim.Category,
		&claim.Source,
		&timestamp,
		&claim.UserSubmitted,
		&claim.Verified,
		&claim.Credibility,
		&claim.Details.SourceTrusted,
		&claim.Details.SourceSuspicious,
		&claim.Details.SuspiciousKeywordCount,
		&claim.Details.CategoryReliability,
		&claim.Details.TextLength,
		&processedAt,
	)
	if err != nil {
		return model.VerifiedClaim{}, err
	}
	if claim.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
		return model.VerifiedClaim{}, errors.Wrapf(err, "parse timestamp for %s", claim.ID)
	}
	if claim.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
		return model.VerifiedClaim{}, errors.Wrapf(err, "parse processed_at for %s", claim.ID)
	}
	return claim, nil
}

// ftsQuery turns free-form user input into a safe FTS match expression:
// each token is quoted and tokens are OR-ed, mirroring the loose matching of
// a search box.
func ftsQuery(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " OR ")
}
