// Package history keeps a record of past scans per project in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"knipclean/internal/model"
	"knipclean/internal/settings"
)

// Store is an open history database.
type Store struct {
	db *sql.DB
}

// Entry is one recorded scan.
type Entry struct {
	ID              int64
	Root            string
	ScannedAt       time.Time
	Files           int
	Dependencies    int
	DevDependencies int
	Exports         int
	Report          *model.Report
}

// Issues matches model.Report.Issues.
func (e Entry) Issues() int {
	return e.Files + e.Dependencies + e.DevDependencies + e.Exports
}

// DefaultPath returns history.db in the user configuration directory.
func DefaultPath() (string, error) {
	dir, err := settings.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			scanned_at INTEGER NOT NULL,
			files INTEGER NOT NULL,
			dependencies INTEGER NOT NULL,
			dev_dependencies INTEGER NOT NULL,
			exports INTEGER NOT NULL,
			report TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS scans_root ON scans (root, scanned_at);
	`)
	if err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores report as the latest scan of root.
func (s *Store) Record(ctx context.Context, root string, report *model.Report, at time.Time) (Entry, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return Entry{}, fmt.Errorf("encode report: %w", err)
	}
	e := Entry{
		Root:            root,
		ScannedAt:       at,
		Files:           len(report.Files),
		Dependencies:    len(report.Dependencies),
		DevDependencies: len(report.DevDependencies),
		Exports:         len(report.Exports),
		Report:          report,
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (root, scanned_at, files, dependencies, dev_dependencies, exports, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		root, at.UnixMilli(), e.Files, e.Dependencies, e.DevDependencies, e.Exports, string(raw),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record scan: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("record scan: %w", err)
	}
	return e, nil
}

// Recent returns up to n scans of root, newest first.
func (s *Store) Recent(ctx context.Context, root string, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, scanned_at, files, dependencies, dev_dependencies, exports, report
		 FROM scans WHERE root = ? ORDER BY scanned_at DESC, id DESC LIMIT ?`,
		root, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			ms   int64
			data string
		)
		if err := rows.Scan(&e.ID, &e.Root, &ms, &e.Files, &e.Dependencies, &e.DevDependencies, &e.Exports, &data); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.ScannedAt = time.UnixMilli(ms)
		var report model.Report
		if err := json.Unmarshal([]byte(data), &report); err != nil {
			return nil, fmt.Errorf("decode scan %d: %w", e.ID, err)
		}
		e.Report = &report
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Last returns the newest scan of root, or nil.
func (s *Store) Last(ctx context.Context, root string) (*Entry, error) {
	entries, err := s.Recent(ctx, root, 1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// Delta is the per-category change between two scans.
type Delta struct {
	Files, Dependencies, DevDependencies, Exports int
}

func Compare(prev Entry, report *model.Report) Delta {
	return Delta{
		Files:           len(report.Files) - prev.Files,
		Dependencies:    len(report.Dependencies) - prev.Dependencies,
		DevDependencies: len(report.DevDependencies) - prev.DevDependencies,
		Exports:         len(report.Exports) - prev.Exports,
	}
}

// Total is the change in issue count.
func (d Delta) Total() int {
	return d.Files + d.Dependencies + d.DevDependencies + d.Exports
}

// String renders the change in issue count.
func (d Delta) String() string {
	t := d.Total()
	switch {
	case t > 0:
		return fmt.Sprintf("+%d issues since last scan", t)
	case t < 0:
		return fmt.Sprintf("%d issues since last scan", t)
	}
	return "no change since last scan"
}
