// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/repostats/internal/stats"
	"github.com/pdiddy/repostats/pkg/types"
)

var fixedNow = time.Date(2014, 3, 5, 6, 7, 8, 0, time.UTC)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

func january2013(t *testing.T, loader stats.Loader) *stats.Table {
	t.Helper()
	tbl := stats.New(loader)
	require.NoError(t, tbl.SetYears(2013, 2013))
	require.NoError(t, tbl.SetMonths(1, 1))
	require.NoError(t, tbl.Fetch(context.Background(), nil))
	return tbl
}

func TestOpenCreatesDatabase(t *testing.T) {
	s := openTest(t)
	assert.FileExists(t, filepath.Join(s.Dir(), "repostats.db"))

	// Opening again reuses the schema.
	again, err := Open(types.StoreConfig{Dir: s.Dir()})
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestSaveTableAndQuery(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	n, err := s.SaveTable(ctx, "ora", "timestamp", january2013(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 31, n)

	got, err := s.DailyTotals(ctx, Filter{Source: "ora", Field: "timestamp"})
	require.NoError(t, err)
	require.Len(t, got, 31)
	assert.Equal(t, "2013-01-01", got[0].Day)
	assert.Equal(t, 2013+1+1+10000, got[0].Total)
	assert.True(t, fixedNow.Equal(got[0].FetchedAt))

	ranged, err := s.DailyTotals(ctx, Filter{From: "2013-01-10", To: "2013-01-12"})
	require.NoError(t, err)
	require.Len(t, ranged, 3)
	assert.Equal(t, "2013-01-12", ranged[2].Day)

	none, err := s.DailyTotals(ctx, Filter{Field: "creationDate"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveTableUpserts(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.SaveTable(ctx, "ora", "timestamp", january2013(t, nil))
	require.NoError(t, err)
	_, err = s.SaveTable(ctx, "ora", "timestamp", january2013(t, func(context.Context, int, int, int) (int, error) {
		return 3, nil
	}))
	require.NoError(t, err)

	got, err := s.DailyTotals(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 31)
	for _, d := range got {
		assert.Equal(t, 3, d.Total, d.Day)
	}
}

func TestFillTable(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.SaveTable(ctx, "ora", "timestamp", january2013(t, nil))
	require.NoError(t, err)

	tbl := stats.New(nil)
	require.NoError(t, tbl.SetYears(2013, 2013))
	require.NoError(t, tbl.SetMonths(1, 2))

	n, err := s.FillTable(ctx, "ora", "timestamp", tbl)
	require.NoError(t, err)
	assert.Equal(t, 31, n)

	v, _ := tbl.Get(2013, 1, 31)
	assert.Equal(t, 2013+1+31+10000, v)
	v, _ = tbl.Get(2013, 2, 1)
	assert.Zero(t, v)
}

func TestViewHistory(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	first := ViewReport{Source: "ora", Field: "funder", Value: "jisc", Views: 10, Downloads: 4, Items: 3,
		RunAt: time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)}
	id, err := s.RecordViews(ctx, first)
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = s.RecordViews(ctx, ViewReport{Source: "ora", Field: "funder", Value: "jisc", Views: 12})
	require.NoError(t, err)
	_, err = s.RecordViews(ctx, ViewReport{Source: "ora", Field: "funder", Value: "wellcome", Views: 1})
	require.NoError(t, err)

	jisc, err := s.ViewHistory(ctx, "funder", "jisc")
	require.NoError(t, err)
	require.Len(t, jisc, 2)
	assert.Equal(t, 10, jisc[0].Views)
	assert.True(t, first.RunAt.Equal(jisc[0].RunAt))
	assert.Equal(t, 12, jisc[1].Views)
	assert.True(t, fixedNow.Equal(jisc[1].RunAt))

	all, err := s.ViewHistory(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestExport(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_, err := s.SaveTable(ctx, "ora", "timestamp", january2013(t, nil))
	require.NoError(t, err)
	_, err = s.RecordViews(ctx, ViewReport{Source: "ora", Field: "funder", Value: "jisc", Views: 7})
	require.NoError(t, err)

	yamlPath, err := s.ExportYAML(ctx)
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML Export
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Len(t, fromYAML.DailyTotals, 31)
	require.Len(t, fromYAML.ViewReports, 1)
	assert.Equal(t, "jisc", fromYAML.ViewReports[0].Value)

	jsonPath, err := s.ExportJSON(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "export.json"), jsonPath)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON Export
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, 7, fromJSON.ViewReports[0].Views)
}
