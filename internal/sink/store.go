// Package sink persists verified claims in a queryable SQLite document store.
//
// Writes are idempotent upserts keyed by claim id: re-delivery of the same
// claim replaces the prior document and refreshes processed_at. The read side
// backs the HTTP query layer with full-text search, exact-match filters and
// aggregate statistics.
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/truthstream/truthstream/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS claims (
	id                       TEXT PRIMARY KEY,
	text                     TEXT NOT NULL,
	category                 TEXT NOT NULL,
	source                   TEXT NOT NULL,
	timestamp                TEXT NOT NULL,
	user_submitted           INTEGER NOT NULL DEFAULT 0,
	verified                 INTEGER NOT NULL,
	credibility              INTEGER NOT NULL,
	source_trusted           INTEGER NOT NULL,
	source_suspicious        INTEGER NOT NULL,
	suspicious_keyword_count INTEGER NOT NULL,
	category_reliability     REAL NOT NULL,
	text_length              INTEGER NOT NULL,
	processed_at             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_claims_category ON claims(category);
CREATE INDEX IF NOT EXISTS idx_claims_verified ON claims(verified);
CREATE INDEX IF NOT EXISTS idx_claims_timestamp ON claims(timestamp);

CREATE VIRTUAL TABLE IF NOT EXISTS claims_fts USING fts4(text, category, source);

CREATE TRIGGER IF NOT EXISTS claims_fts_insert AFTER INSERT ON claims BEGIN
	INSERT INTO claims_fts(docid, text, category, source)
	VALUES (new.rowid, new.text, new.category, new.source);
END;

CREATE TRIGGER IF NOT EXISTS claims_fts_delete AFTER DELETE ON claims BEGIN
	DELETE FROM claims_fts WHERE docid = old.rowid;
END;

CREATE TRIGGER IF NOT EXISTS claims_fts_update AFTER UPDATE ON claims BEGIN
	DELETE FROM claims_fts WHERE docid = old.rowid;
	INSERT INTO claims_fts(docid, text, category, source)
	VALUES (new.rowid, new.text, new.category, new.source);
END;
`

// Store is the SQLite-backed sink adapter. The underlying handle is pooled
// and safe to share across partition workers; each write is an independent
// single-document transaction.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time // injectable clock for processed_at stamping
}

// Open opens (or creates) the database at cfg.Path and applies the schema.
func Open(cfg model.SinkConfig, logger *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// WAL allows the API to read while the consumer writes.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}
	busyMs := cfg.BusyTimeout.Milliseconds()
	if busyMs <= 0 {
		busyMs = 5000
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyMs)); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Infow("sink opened", "path", cfg.Path, "wal_mode", true)

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the store is reachable. The consumer refuses to start when
// the sink cannot be reached, since it would have no useful work to do.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Mark(errors.Wrap(err, "ping"), ErrUnavailable)
	}
	return nil
}

const upsertQuery = `
INSERT INTO claims (
	id, text, category, source, timestamp, user_submitted,
	verified, credibility, source_trusted, source_suspicious,
	suspicious_keyword_count, category_reliability, text_length, processed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	text                     = excluded.text,
	category                 = excluded.category,
	source                   = excluded.source,
	timestamp                = excluded.timestamp,
	user_submitted           = excluded.user_submitted,
	verified                 = excluded.verified,
	credibility              = excluded.credibility,
	source_trusted           = excluded.source_trusted,
	source_suspicious        = excluded.source_suspicious,
	suspicious_keyword_count = excluded.suspicious_keyword_count,
	category_reliability     = excluded.category_reliability,
	text_length              = excluded.text_length,
	processed_at             = excluded.processed_at`

// Upsert writes a verified claim, fully replacing any prior document with the
// same id. processed_at is stamped here, at write time, so reprocessing the
// same message refreshes it even though the verdict is unchanged.
//
// Failures are classified: malformed documents return ErrRejected (do not
// retry); everything else returns ErrUnavailable (retry via redelivery).
func (s *Store) Upsert(ctx context.Context, claim model.VerifiedClaim) error {
	if err := validateDocument(claim); err != nil {
		return err
	}

	processedAt := s.now().UTC()
	_, err := s.db.ExecContext(ctx, upsertQuery,
		claim.ID,
		claim.Text,
		claim.Category,
		claim.Source,
		claim.Timestamp.UTC().Format(time.RFC3339Nano),
		claim.UserSubmitted,
		claim.Verified,
		claim.Credibility,
		claim.Details.SourceTrusted,
		claim.Details.SourceSuspicious,
		claim.Details.SuspiciousKeywordCount,
		claim.Details.CategoryReliability,
		claim.Details.TextLength,
		processedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "upsert claim %s", claim.ID), ErrUnavailable)
	}

	s.logger.Debugw("claim saved",
		"id", claim.ID,
		"category", claim.Category,
		"credibility", claim.Credibility,
		"verified", claim.Verified,
	)
	return nil
}

// validateDocument rejects documents that can never be stored successfully.
func validateDocument(claim model.VerifiedClaim) error {
	switch {
	case claim.ID == "":
		return errors.Mark(errors.New("empty claim id"), ErrRejected)
	case claim.Text == "":
		return errors.Mark(errors.New("empty claim text"), ErrRejected)
	case claim.Credibility < 0 || claim.Credibility > 100:
		return errors.Mark(errors.Newf("credibility %d outside [0,100]", claim.Credibility), ErrRejected)
	}
	return nil
}
