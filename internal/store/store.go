// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps the history of daily totals and views reports in a
// local SQLite database so reports can be compared over time and rendered
// again without querying the sources.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/repostats/internal/stats"
	"github.com/pdiddy/repostats/pkg/types"
)

const (
	// DefaultDir holds the database when the config names none.
	DefaultDir = "data"
	dbFile     = "repostats.db"
	dayLayout  = "2006-01-02"
)

// Store manages the report history database.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// Open opens or creates <dir>/repostats.db and its schema.
func Open(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS daily_totals (
			source TEXT NOT NULL,
			field TEXT NOT NULL,
			day TEXT NOT NULL,
			total INTEGER NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (source, field, day)
		)`,
		`CREATE TABLE IF NOT EXISTS view_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			views INTEGER NOT NULL,
			downloads INTEGER NOT NULL,
			items INTEGER NOT NULL,
			run_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_view_reports_search ON view_reports(field, value)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// DailyTotal is one stored day.
type DailyTotal struct {
	Source    string    `json:"source" yaml:"source"`
	Field     string    `json:"field" yaml:"field"`
	Day       string    `json:"day" yaml:"day"`
	Total     int       `json:"total" yaml:"total"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// SaveTable upserts every day of tbl under source and field and returns the
// number of rows written.
func (s *Store) SaveTable(ctx context.Context, source, field string, tbl *stats.Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO daily_totals (source, field, day, total, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source, field, day) DO UPDATE SET
			total=excluded.total, fetched_at=excluded.fetched_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	fetched := s.now().UTC().Format(time.RFC3339)
	entries := tbl.Entries()
	for _, e := range entries {
		day := time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, time.UTC).Format(dayLayout)
		if _, err := stmt.ExecContext(ctx, source, field, day, e.Total, fetched); err != nil {
			return 0, fmt.Errorf("upserting %s: %w", day, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing totals: %w", err)
	}
	return len(entries), nil
}

// Filter narrows DailyTotals. Empty fields match everything; From and To
// are inclusive "YYYY-MM-DD" bounds.
type Filter struct {
	Source string
	Field  string
	From   string
	To     string
}

// DailyTotals returns the stored days matching f, ordered by source, field
// and day.
func (s *Store) DailyTotals(ctx context.Context, f Filter) ([]DailyTotal, error) {
	query := `SELECT source, field, day, total, fetched_at FROM daily_totals WHERE 1=1`
	var args []any
	if f.Source != "" {
		query += ` AND source = ?`
		args = append(args, f.Source)
	}
	if f.Field != "" {
		query += ` AND field = ?`
		args = append(args, f.Field)
	}
	if f.From != "" {
		query += ` AND day >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND day <= ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY source, field, day`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying daily totals: %w", err)
	}
	defer rows.Close()

	var out []DailyTotal
	for rows.Next() {
		var d DailyTotal
		var fetched string
		if err := rows.Scan(&d.Source, &d.Field, &d.Day, &d.Total, &fetched); err != nil {
			return nil, fmt.Errorf("scanning daily total: %w", err)
		}
		d.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
		out = append(out, d)
	}
	return out, rows.Err()
}

// FillTable copies stored totals for source and field into the days tbl
// covers and returns how many days were found.
func (s *Store) FillTable(ctx context.Context, source, field string, tbl *stats.Table) (int, error) {
	years := tbl.Years()
	months := tbl.Months()
	from := time.Date(years[0], time.Month(months[0]), 1, 0, 0, 0, 0, time.UTC)
	last := months[len(months)-1]
	to := time.Date(years[len(years)-1], time.Month(last), stats.DaysIn(years[len(years)-1], last), 0, 0, 0, 0, time.UTC)

	totals, err := s.DailyTotals(ctx, Filter{
		Source: source,
		Field:  field,
		From:   from.Format(dayLayout),
		To:     to.Format(dayLayout),
	})
	if err != nil {
		return 0, err
	}

	n := 0
	for _, d := range totals {
		day, err := time.Parse(dayLayout, d.Day)
		if err != nil {
			continue
		}
		// Days outside the month range are skipped by Set.
		if tbl.Set(day.Year(), int(day.Month()), day.Day(), d.Total) == nil {
			n++
		}
	}
	return n, nil
}
