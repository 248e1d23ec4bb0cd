// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package datecount counts the records a Solr source holds for a single day
// of a date field. Loader.Count plugs into stats.Table.
package datecount

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/internal/stats"
)

// AvailableDateFields are the date fields the ORA schema indexes.
var AvailableDateFields = []string{"timestamp", "creationDate", "modifiedDate"}

// DefaultField is counted when a Loader has no field.
const DefaultField = "timestamp"

// countRows keeps responses small; only numFound is read.
const countRows = 2

// Loader counts records per day on one endpoint.
type Loader struct {
	Endpoint string
	Field    string
	Joiner   string
	APIKey   string
	KeyParam string

	// Enabled must be set for Count to query the endpoint. Otherwise Count
	// returns stats.SimulatedLoader's value.
	Enabled bool

	Client *resty.Client
	Logger *slog.Logger
}

// Count returns numFound for records whose field falls on the given day.
func (l *Loader) Count(ctx context.Context, year, month, day int) (int, error) {
	if !l.Enabled {
		return stats.SimulatedLoader(ctx, year, month, day)
	}

	field := l.Field
	if field == "" {
		field = DefaultField
	}
	wanted := solr.FormatDate(year, month, day)

	s := solr.New(fmt.Sprintf("%s-%s", field, wanted), l.Client,
		solr.WithLogger(l.Logger), solr.WithJoiner(l.Joiner))
	s.SetEndpoint(l.Endpoint)
	if l.APIKey != "" {
		s.SetAPIKey(l.APIKey, l.KeyParam)
	}
	s.SetRows(countRows)
	s.SetFields("id", field)
	s.QueryDateRange(field, wanted, wanted, solr.ThreeDigit)

	if _, err := s.FetchPage(ctx); err != nil {
		return 0, fmt.Errorf("counting %s on %s: %w", field, wanted, err)
	}
	return s.TotalFound(), nil
}

// Loader returns Count as a stats.Loader.
func (l *Loader) Loader() stats.Loader {
	return l.Count
}
