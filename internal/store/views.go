// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"
)

// ViewReport is the stored outcome of one views and downloads report.
type ViewReport struct {
	ID        int64     `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	Field     string    `json:"field" yaml:"field"`
	Value     string    `json:"value" yaml:"value"`
	Views     int       `json:"views" yaml:"views"`
	Downloads int       `json:"downloads" yaml:"downloads"`
	Items     int       `json:"items" yaml:"items"`
	RunAt     time.Time `json:"run_at" yaml:"run_at"`
}

// RecordViews stores r and returns its row id. A zero RunAt is stamped
// with the current time.
func (s *Store) RecordViews(ctx context.Context, r ViewReport) (int64, error) {
	if r.RunAt.IsZero() {
		r.RunAt = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO view_reports (source, field, value, views, downloads, items, run_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Source, r.Field, r.Value, r.Views, r.Downloads, r.Items,
		r.RunAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("recording views for %s=%s: %w", r.Field, r.Value, err)
	}
	return res.LastInsertId()
}

// ViewHistory returns the stored reports, oldest first. An empty field or
// value matches all.
func (s *Store) ViewHistory(ctx context.Context, field, value string) ([]ViewReport, error) {
	query := `SELECT id, source, field, value, views, downloads, items, run_at
		FROM view_reports WHERE 1=1`
	var args []any
	if field != "" {
		query += ` AND field = ?`
		args = append(args, field)
	}
	if value != "" {
		query += ` AND value = ?`
		args = append(args, value)
	}
	query += ` ORDER BY run_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying view history: %w", err)
	}
	defer rows.Close()

	var out []ViewReport
	for rows.Next() {
		var r ViewReport
		var runAt string
		if err := rows.Scan(&r.ID, &r.Source, &r.Field, &r.Value,
			&r.Views, &r.Downloads, &r.Items, &runAt); err != nil {
			return nil, fmt.Errorf("scanning view report: %w", err)
		}
		r.RunAt, _ = time.Parse(time.RFC3339, runAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
