// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/repostats/internal/search"
	"github.com/pdiddy/repostats/internal/solr"
)

func TestSavedQuery(t *testing.T) {
	q := search.Query{
		Terms:      []solr.Term{{Field: "funder", Value: "wellcome"}},
		Rows:       100,
		Fields:     []string{"id", "title"},
		Sort:       "date",
		Descending: true,
	}
	path := filepath.Join(t.TempDir(), "wellcome.yaml")
	require.NoError(t, search.WriteQueryFile(path, q, search.Output{Source: "plos"}))

	qf, err := search.ReadQueryFile(path)
	require.NoError(t, err)
	got, source := savedQuery(qf, "ora")
	assert.Equal(t, q, got)
	assert.Equal(t, "plos", source)

	qf.Query.Source = ""
	_, source = savedQuery(qf, "ora")
	assert.Equal(t, "ora", source)
}
