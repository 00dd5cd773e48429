// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal records temporary files that could not be removed during
// a merge, so a later cleanup run can retry them.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Leftover is a temporary file left behind by a merge run.
type Leftover struct {
	Path       string
	Source     string
	Reason     string
	RunID      string
	RecordedAt time.Time
}

// Journal manages the leftover SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS leftovers (
		path TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		reason TEXT NOT NULL,
		run_id TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a leftover. Recording the same path again replaces the
// earlier row.
func (j *Journal) Record(ctx context.Context, l Leftover) error {
	if l.RecordedAt.IsZero() {
		l.RecordedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO leftovers (path, source, reason, run_id, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		l.Path, l.Source, l.Reason, l.RunID, l.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording leftover %s: %w", l.Path, err)
	}
	return nil
}

// List returns all leftovers, oldest first.
func (j *Journal) List(ctx context.Context) ([]Leftover, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT path, source, reason, run_id, recorded_at FROM leftovers ORDER BY recorded_at, path`)
	if err != nil {
		return nil, fmt.Errorf("listing leftovers: %w", err)
	}
	defer rows.Close()

	var out []Leftover
	for rows.Next() {
		var l Leftover
		var ts string
		if err := rows.Scan(&l.Path, &l.Source, &l.Reason, &l.RunID, &ts); err != nil {
			return nil, fmt.Errorf("scanning leftover: %w", err)
		}
		l.RecordedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Forget deletes the row for path. Forgetting an unknown path is not an error.
func (j *Journal) Forget(ctx context.Context, path string) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM leftovers WHERE path = ?`, path); err != nil {
		return fmt.Errorf("forgetting leftover %s: %w", path, err)
	}
	return nil
}
