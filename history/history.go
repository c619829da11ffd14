// Package history persists one record per crawl run so repeated runs can be
// compared: traversal totals, remote-call count, and the cache counters that
// reveal the hit/miss/expired/invalid mix.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("not found")

// Run is a single crawl run with its aggregate statistics.
type Run struct {
	ID           int64
	RootCategory int64
	StartedAt    time.Time
	FinishedAt   time.Time
	Categories   int64
	Series       int64
	RemoteCalls  int64
	CacheHits    int64
	CacheMisses  int64
	CacheExpired int64
	CacheInvalid int64
	TreeNodes    int64
}

// Store wraps the SQLite database holding run history.
type Store struct {
	conn *sql.DB
}

// Open creates the database connection and initializes the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_category INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		categories INTEGER NOT NULL DEFAULT 0,
		series INTEGER NOT NULL DEFAULT 0,
		remote_calls INTEGER NOT NULL DEFAULT 0,
		cache_hits INTEGER NOT NULL DEFAULT 0,
		cache_misses INTEGER NOT NULL DEFAULT 0,
		cache_expired INTEGER NOT NULL DEFAULT 0,
		cache_invalid INTEGER NOT NULL DEFAULT 0,
		tree_nodes INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// RecordRun inserts a run and fills in its assigned ID.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	query := `
	INSERT INTO runs (root_category, started_at, finished_at, categories, series,
		remote_calls, cache_hits, cache_misses, cache_expired, cache_invalid, tree_nodes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.conn.ExecContext(ctx, query,
		run.RootCategory,
		run.StartedAt,
		run.FinishedAt,
		run.Categories,
		run.Series,
		run.RemoteCalls,
		run.CacheHits,
		run.CacheMisses,
		run.CacheExpired,
		run.CacheInvalid,
		run.TreeNodes,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, root_category, started_at, finished_at, categories, series,
		remote_calls, cache_hits, cache_misses, cache_expired, cache_invalid, tree_nodes
	FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
	`

	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID,
			&r.RootCategory,
			&r.StartedAt,
			&r.FinishedAt,
			&r.Categories,
			&r.Series,
			&r.RemoteCalls,
			&r.CacheHits,
			&r.CacheMisses,
			&r.CacheExpired,
			&r.CacheInvalid,
			&r.TreeNodes,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastRun returns the most recent run.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	runs, err := s.RecentRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return &runs[0], nil
}

// GetSetting retrieves a setting value by key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = ?`
	var value string
	err := s.conn.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting stores or updates a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := s.conn.ExecContext(ctx, query, key, value)
	return err
}
