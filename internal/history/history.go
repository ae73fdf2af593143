// Package history keeps a SQLite journal of build runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one finished build run.
type Entry struct {
	ID         int64
	BuildID    string
	Mode       string
	Counter    int
	Outcome    string
	Error      string
	Revision   string
	Duration   time.Duration
	FinishedAt time.Time
}

// Journal records and lists build runs.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating when needed) the journal at dbPath.
// Use ":memory:" for an in-memory journal.
func Open(dbPath string) (*SQLiteJournal, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return j, nil
}

func (j *SQLiteJournal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		counter INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		revision TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_finished_at ON builds(finished_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends an entry. A zero FinishedAt is stamped with the current time.
func (j *SQLiteJournal) Record(ctx context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, mode, counter, outcome, error, revision, duration_ms, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BuildID, e.Mode, e.Counter, e.Outcome, e.Error, e.Revision, e.Duration.Milliseconds(), e.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, build_id, mode, counter, outcome, error, revision, duration_ms, finished_at
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMS, finishedMS int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Mode, &e.Counter, &e.Outcome, &e.Error, &e.Revision, &durationMS, &finishedMS); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.FinishedAt = time.UnixMilli(finishedMS)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

// NopJournal discards entries.
type NopJournal struct{}

func (NopJournal) Record(context.Context, Entry) error           { return nil }
func (NopJournal) Recent(context.Context, int) ([]Entry, error) { return nil, nil }
func (NopJournal) Close() error                                 { return nil }
