// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/catctl/catctl/internal/log"
)

// Status is the outcome of one run.
type Status string

const (
	StatusOK           Status = "ok"
	StatusFirstRun     Status = "first_run"
	StatusReportFailed Status = "report_failed"
	StatusFailed       Status = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL UNIQUE,
	stamp TEXT NOT NULL,
	previous TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	store TEXT NOT NULL DEFAULT '',
	added INTEGER NOT NULL DEFAULT 0,
	removed INTEGER NOT NULL DEFAULT 0,
	changed INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Entry is one ledger row.
type Entry struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Stamp     string    `json:"stamp" yaml:"stamp"`
	Previous  string    `json:"previous" yaml:"previous"`
	Status    Status    `json:"status" yaml:"status"`
	Store     string    `json:"store" yaml:"store"`
	Added     int       `json:"added" yaml:"added"`
	Removed   int       `json:"removed" yaml:"removed"`
	Changed   int       `json:"changed" yaml:"changed"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Ledger records run outcomes in a sqlite database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path. ":memory:" gives a private
// in-memory ledger.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init ledger %s: %w", path, err)
	}
	log.Debugf("ledger opened: %s", path)

	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends e. A zero CreatedAt is set to now.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, stamp, previous, status, store, added, removed, changed, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Stamp, e.Previous, string(e.Status), e.Store,
		e.Added, e.Removed, e.Changed, e.Error, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", e.RunID, err)
	}
	return nil
}

// Entries returns up to limit entries, newest first. limit <= 0 returns all.
func (l *Ledger) Entries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, stamp, previous, status, store, added, removed, changed, error, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status string
		var created int64
		if err := rows.Scan(&e.RunID, &e.Stamp, &e.Previous, &status, &e.Store,
			&e.Added, &e.Removed, &e.Changed, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		e.Status = Status(status)
		e.CreatedAt = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
