// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Export is the whole history as written by ExportYAML and ExportJSON.
type Export struct {
	DailyTotals []DailyTotal `json:"daily_totals" yaml:"daily_totals"`
	ViewReports []ViewReport `json:"view_reports" yaml:"view_reports"`
}

// Snapshot reads every stored row.
func (s *Store) Snapshot(ctx context.Context) (*Export, error) {
	totals, err := s.DailyTotals(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	views, err := s.ViewHistory(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return &Export{DailyTotals: totals, ViewReports: views}, nil
}

// ExportYAML writes the history to <dir>/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "export.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the history to <dir>/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "export.json")
	return path, os.WriteFile(path, data, 0o644)
}
