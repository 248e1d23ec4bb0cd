// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solr

import (
	"context"
	"sort"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/repostats/internal/audit"
	"github.com/pdiddy/repostats/pkg/types"
)

// Audit keys written by ListMatchingIDs.
const (
	LogValue       = "2a. Value searching for"
	LogField       = "2b. Field searching in"
	LogFirstQuery  = "2c. First query"
	LogTotalFound  = "2d. Number of IDs found"
	LogUniqueCount = "2e. Number of unique IDs"
)

// ListMatchingIDs searches endpoint for value in field and returns the ids
// of every matching document, sorted. Only the id field is requested. An
// empty field searches all fields ("*"); a pageSize of zero uses MaxRows.
// The returned log records the value, field, first query URL, numFound and
// number of unique ids.
//
// Earlier terms, paging state, start offset and documents of s are
// discarded first. Other parameters such as an API key are kept.
func (s *Session) ListMatchingIDs(ctx context.Context, endpoint, value, field string, pageSize int) ([]string, audit.Log, error) {
	s.clearQuery()
	if field == "" {
		field = "*"
	}
	if pageSize <= 0 {
		pageSize = MaxRows
	}

	log := audit.New()
	s.SetEndpoint(endpoint)
	s.SetRows(pageSize)
	s.SetFields("id")
	log.Set(LogValue, value)
	log.Set(LogField, field)
	s.Query(field, value)
	log.Set(LogFirstQuery, s.URL())

	if err := s.FetchAll(ctx); err != nil {
		return nil, log, err
	}
	log.Set(LogTotalFound, s.total)

	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	log.Set(LogUniqueCount, len(ids))

	return ids, log, nil
}

// RunSearch runs a complete search for terms on endpoint and returns every
// matching document keyed by id.
func RunSearch(ctx context.Context, client *resty.Client, endpoint string, terms []Term, opts ...Option) (map[string]types.Document, error) {
	s := New("run-search", client, opts...)
	s.SetEndpoint(endpoint)
	for _, t := range terms {
		s.Query(t.Field, t.Value)
	}
	if err := s.FetchAll(ctx); err != nil {
		return nil, err
	}
	return s.docs, nil
}
