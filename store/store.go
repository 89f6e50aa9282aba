// Package store owns the persisted result set: continuous rank
// assignment, dedup by unique key, the record cap, CSV export and the
// related-search keyword cache.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/use-agent/serptrack/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id             TEXT PRIMARY KEY,
	unique_key     TEXT NOT NULL UNIQUE,
	rank_positions INTEGER NOT NULL,
	result_link    TEXT NOT NULL,
	target_url     TEXT NOT NULL,
	result_type    TEXT NOT NULL,
	rank_type      TEXT NOT NULL,
	date           TEXT NOT NULL,
	exam_code      TEXT NOT NULL,
	variation      TEXT NOT NULL,
	location       TEXT NOT NULL,
	title          TEXT NOT NULL,
	snippet        TEXT NOT NULL,
	keywords       TEXT NOT NULL,
	query          TEXT NOT NULL,
	extracted_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_rank ON results(rank_positions);

CREATE TABLE IF NOT EXISTS keyword_cache (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	query    TEXT NOT NULL,
	keywords TEXT NOT NULL
);
`

// Store is the sqlite-backed ranked result store. Rank assignment is a
// read-modify-write over the persisted maximum, so appends serialize
// behind a single-writer mutex: no two batches may observe the same
// highest rank before persisting.
type Store struct {
	db         *sql.DB
	mu         sync.Mutex
	maxRecords int
}

// Open opens (or creates) the database at path, applies the production
// pragmas and ensures the schema. Use ":memory:" in tests.
func Open(path string, maxRecords int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// A second connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Store{db: db, maxRecords: maxRecords}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append processes a raw batch: assigns continuous ranks starting after
// the current persisted maximum, classifies and keys each record, drops
// records whose unique key already exists (a normal outcome of
// re-scraping overlapping pages), persists the survivors and truncates
// the set to the lowest-ranked maxRecords.
//
// The returned slice contains ALL newly processed records, including the
// ones dropped from storage as duplicates, so callers can display the
// full batch.
func (s *Store) Append(ctx context.Context, raw []models.RawResult, query string) ([]models.Result, error) {
	if len(raw) == 0 {
		return []models.Result{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	var highest int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(rank_positions), 0) FROM results`).Scan(&highest); err != nil {
		return nil, fmt.Errorf("failed to read highest rank: %w", err)
	}

	// Ranks are always computed fresh from the persisted maximum, never
	// trusted from upstream.
	processed := make([]models.Result, 0, len(raw))
	for i, r := range raw {
		processed = append(processed, buildResult(r, query, highest+i+1))
	}

	for _, p := range processed {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM results WHERE unique_key = ?`, p.UniqueKey).Scan(&one)
		switch {
		case err == sql.ErrNoRows:
			if err := insertResult(ctx, tx, p); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, fmt.Errorf("failed to check duplicate: %w", err)
		default:
			// Duplicate: silently dropped from storage.
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM results WHERE id NOT IN (
			SELECT id FROM results ORDER BY rank_positions ASC LIMIT ?
		)`, s.maxRecords); err != nil {
		return nil, fmt.Errorf("failed to truncate result set: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit append: %w", err)
	}

	return processed, nil
}

func insertResult(ctx context.Context, tx *sql.Tx, p models.Result) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO results (
			id, unique_key, rank_positions, result_link, target_url,
			result_type, rank_type, date, exam_code, variation,
			location, title, snippet, keywords, query, extracted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UniqueKey, p.RankPositions, p.ResultLink, p.TargetURL,
		p.ResultType, p.RankType, p.Date, p.ExamCode, p.Variation,
		p.Location, p.Title, p.Snippet, p.Keywords, p.Query,
		p.ExtractedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// All returns the full persisted set sorted ascending by rank.
func (s *Store) All(ctx context.Context) ([]models.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, unique_key, rank_positions, result_link, target_url,
		       result_type, rank_type, date, exam_code, variation,
		       location, title, snippet, keywords, query, extracted_at
		FROM results
		ORDER BY rank_positions ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.Result{}
	for rows.Next() {
		p, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

// Count returns the number of persisted records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

// Clear wipes the persisted set and the keyword cache. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM keyword_cache`); err != nil {
		return fmt.Errorf("failed to clear keyword cache: %w", err)
	}
	return nil
}

// Keywords returns the cached related-search keyword string if it was
// computed for the given query; a query mismatch yields the empty string
// rather than stale data.
func (s *Store) Keywords(ctx context.Context, query string) (string, error) {
	var cachedQuery, keywords string
	err := s.db.QueryRowContext(ctx,
		`SELECT query, keywords FROM keyword_cache WHERE id = 1`).Scan(&cachedQuery, &keywords)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keyword cache: %w", err)
	}
	if cachedQuery != query {
		return "", nil
	}
	return keywords, nil
}

// SetKeywords stores the keyword string for a query, replacing any
// previous cache entry.
func (s *Store) SetKeywords(ctx context.Context, query, keywords string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keyword_cache (id, query, keywords) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET query = excluded.query, keywords = excluded.keywords`,
		query, keywords)
	if err != nil {
		return fmt.Errorf("failed to store keyword cache: %w", err)
	}
	return nil
}
