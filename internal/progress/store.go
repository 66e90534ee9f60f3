// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress persists collection progress: one decision row per
// evaluated author plus the index high-water mark. The store is the ledger
// that makes interrupted runs resumable and top-up runs safe — a settled
// author is never re-fetched and an issued index is never reused.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// ErrLocked is returned by Open when another run holds the database's run
// lock. Concurrent runs against one progress database would break the
// contiguous-index invariant, so they are refused outright.
var ErrLocked = errors.New("progress database is locked by another run")

// Store manages the progress SQLite database for one field.
type Store struct {
	db     *sql.DB
	field  string
	locked bool
}

// DBPath returns the database path for a field inside stateDir.
func DBPath(stateDir, field string) string {
	name := strings.ToLower(field) + "_progress.db"
	return filepath.Join(stateDir, name)
}

// Open opens or creates the progress database for field under stateDir,
// creates the schema if needed, pins the required-years window, and acquires
// the run lock. The window is recorded on first open; a later open with a
// different window is rejected, since indices from different windows are not
// comparable.
func Open(stateDir, field string, requiredYears []int) (*Store, error) {
	if err := types.ValidateRequiredYears(requiredYears); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := DBPath(stateDir, field)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, field: field}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := s.pinWindow(requiredYears[0]); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.acquireLock(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the run lock and the database connection.
func (s *Store) Close() error {
	if s.locked {
		if _, err := s.db.Exec(`DELETE FROM run_lock WHERE id = 1`); err != nil {
			s.db.Close()
			return fmt.Errorf("releasing run lock: %w", err)
		}
		s.locked = false
	}
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			author_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			idx INTEGER UNIQUE,
			reason TEXT,
			decided_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS selections (
			author_id TEXT NOT NULL REFERENCES authors(author_id),
			year INTEGER NOT NULL,
			paper_id TEXT NOT NULL,
			title TEXT,
			venue TEXT,
			abstract TEXT,
			citation_count INTEGER,
			author_position TEXT,
			PRIMARY KEY (author_id, year)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authors_status ON authors(status)`,
		`CREATE TABLE IF NOT EXISTS api_cache (
			kind TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (kind, key)
		)`,
		`CREATE TABLE IF NOT EXISTS run_lock (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			pid INTEGER NOT NULL,
			acquired_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// pinWindow records the window start year on first open and rejects a
// mismatching window afterwards.
func (s *Store) pinWindow(startYear int) error {
	var stored string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'start_year'`).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.Exec(`INSERT INTO meta (key, value) VALUES ('start_year', ?)`,
			fmt.Sprintf("%d", startYear))
		if err != nil {
			return fmt.Errorf("recording window start year: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading window start year: %w", err)
	}

	if stored != fmt.Sprintf("%d", startYear) {
		return fmt.Errorf("progress database was created for start year %s, not %d", stored, startYear)
	}
	return nil
}

func (s *Store) acquireLock() error {
	_, err := s.db.Exec(
		`INSERT INTO run_lock (id, pid, acquired_at) VALUES (1, ?, ?)`,
		os.Getpid(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "PRIMARY") {
			return ErrLocked
		}
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	s.locked = true
	return nil
}

// BreakLock removes a stale run lock left behind by a crashed run. Open the
// store only after confirming no other run is active.
func BreakLock(stateDir, field string) error {
	dbPath := DBPath(stateDir, field)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no progress database at %s", dbPath)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if _, err := db.Exec(`DELETE FROM run_lock WHERE id = 1`); err != nil {
		return fmt.Errorf("removing run lock: %w", err)
	}
	return nil
}

// Load reconstructs the progress state from the database. A fresh database
// yields an empty state with NextIndex 1. Load verifies the contiguous-index
// invariant and refuses a database that violates it — continuing would issue
// duplicate or gapped indices.
func (s *Store) Load(ctx context.Context, requiredYears []int, targetCount int) (*types.ProgressState, error) {
	state := types.NewProgressState(requiredYears, targetCount)

	rows, err := s.db.QueryContext(ctx,
		`SELECT author_id, name, status, COALESCE(idx, 0), COALESCE(reason, '') FROM authors`)
	if err != nil {
		return nil, fmt.Errorf("reading authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec types.AuthorRecord
		var status string
		if err := rows.Scan(&rec.AuthorID, &rec.Name, &status, &rec.Index, &rec.Reason); err != nil {
			return nil, fmt.Errorf("scanning author row: %w", err)
		}
		rec.Status = types.AuthorStatus(status)
		state.Records[rec.AuthorID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating author rows: %w", err)
	}

	if err := s.loadSelections(ctx, state); err != nil {
		return nil, err
	}

	maxIndex, err := verifyIndexes(state)
	if err != nil {
		return nil, err
	}
	state.NextIndex = maxIndex + 1
	return state, nil
}

func (s *Store) loadSelections(ctx context.Context, state *types.ProgressState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT author_id, year, paper_id, COALESCE(title, ''), COALESCE(venue, ''),
		        COALESCE(abstract, ''), COALESCE(citation_count, 0), COALESCE(author_position, '')
		 FROM selections`)
	if err != nil {
		return fmt.Errorf("reading selections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var authorID string
		var year int
		var p types.Paper
		var pos string
		if err := rows.Scan(&authorID, &year, &p.ID, &p.Title, &p.Venue,
			&p.Abstract, &p.CitationCount, &pos); err != nil {
			return fmt.Errorf("scanning selection row: %w", err)
		}
		p.Year = year
		p.AuthorPosition = types.AuthorPosition(pos)

		rec, ok := state.Records[authorID]
		if !ok {
			return fmt.Errorf("selection row references unknown author %s", authorID)
		}
		if rec.SelectedPapers == nil {
			rec.SelectedPapers = make(map[int]types.Paper)
		}
		rec.SelectedPapers[year] = p
		state.Records[authorID] = rec
	}
	return rows.Err()
}

// verifyIndexes checks that qualified indices form the contiguous sequence
// {1..k} and returns k.
func verifyIndexes(state *types.ProgressState) (int, error) {
	seen := make(map[int]string)
	maxIndex := 0
	qualified := 0
	for _, rec := range state.Records {
		if rec.Status != types.StatusQualified {
			if rec.Index != 0 {
				return 0, fmt.Errorf("author %s is %s but holds index %d", rec.AuthorID, rec.Status, rec.Index)
			}
			continue
		}
		qualified++
		if rec.Index <= 0 {
			return 0, fmt.Errorf("qualified author %s has no index", rec.AuthorID)
		}
		if other, dup := seen[rec.Index]; dup {
			return 0, fmt.Errorf("index %d assigned to both %s and %s", rec.Index, other, rec.AuthorID)
		}
		seen[rec.Index] = rec.AuthorID
		if rec.Index > maxIndex {
			maxIndex = rec.Index
		}
	}
	if maxIndex != qualified {
		return 0, fmt.Errorf("indices are not contiguous: %d qualified authors but highest index is %d", qualified, maxIndex)
	}
	return maxIndex, nil
}

// CacheGet returns the cached API response stored under (kind, key), with
// ok false on a miss. The cache keeps candidate discovery and paper fetches
// from re-querying the API across interrupted or repeated runs.
func (s *Store) CacheGet(ctx context.Context, kind, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM api_cache WHERE kind = ? AND key = ?`, kind, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("reading cache %s/%s: %w", kind, key, err)
	}
	return value, true, nil
}

// CachePut stores an API response under (kind, key), replacing any earlier
// entry.
func (s *Store) CachePut(ctx context.Context, kind, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_cache (kind, key, value, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(kind, key) DO UPDATE SET value=excluded.value, fetched_at=excluded.fetched_at`,
		kind, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing cache %s/%s: %w", kind, key, err)
	}
	return nil
}

// HasDecision reports whether the author already has a terminal decision.
// The orchestrator gates every candidate on this before fetching, which is
// what makes resumption and top-up idempotent.
func (s *Store) HasDecision(ctx context.Context, authorID string) (bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM authors WHERE author_id = ?`, authorID).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("querying decision for %s: %w", authorID, err)
	}
	st := types.AuthorStatus(status)
	return st == types.StatusQualified || st == types.StatusDisqualified, nil
}

// Record durably writes one author's decision and its selected papers in a
// single transaction. The write must complete before the orchestrator
// reports the author settled; a failure here is fatal to the run because
// continuing could reissue the author's index after the next load.
func (s *Store) Record(ctx context.Context, rec types.AuthorRecord) error {
	if !rec.Decided() {
		return fmt.Errorf("refusing to record undecided author %s", rec.AuthorID)
	}
	if rec.Status == types.StatusDisqualified && rec.Index != 0 {
		return fmt.Errorf("disqualified author %s must not hold index %d", rec.AuthorID, rec.Index)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var idx any
	if rec.Index > 0 {
		idx = rec.Index
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO authors (author_id, name, status, idx, reason, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(author_id) DO UPDATE SET
			name=excluded.name, status=excluded.status, idx=excluded.idx,
			reason=excluded.reason, decided_at=excluded.decided_at`,
		rec.AuthorID, rec.Name, string(rec.Status), idx, rec.Reason,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting author %s: %w", rec.AuthorID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM selections WHERE author_id = ?`, rec.AuthorID); err != nil {
		return fmt.Errorf("clearing selections for %s: %w", rec.AuthorID, err)
	}

	if len(rec.SelectedPapers) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO selections (author_id, year, paper_id, title, venue, abstract, citation_count, author_position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing selection insert: %w", err)
		}
		defer stmt.Close()

		for year, p := range rec.SelectedPapers {
			_, err := stmt.ExecContext(ctx,
				rec.AuthorID, year, p.ID, p.Title, p.Venue, p.Abstract,
				p.CitationCount, string(p.AuthorPosition))
			if err != nil {
				return fmt.Errorf("inserting selection %s/%d: %w", rec.AuthorID, year, err)
			}
		}
	}

	return tx.Commit()
}
