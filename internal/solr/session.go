// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package solr builds queries against Solr search endpoints, fetches result
// pages and accumulates every matching document of a search.
//
// A Session holds the state of one logical search: endpoint, query terms,
// URL parameters, paging cursor and the documents merged so far. Sessions
// are not safe for concurrent use; run independent searches on independent
// sessions.
package solr

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/repostats/internal/httputil"
	"github.com/pdiddy/repostats/pkg/types"
)

// MaxRows is the largest page size a session will request.
const MaxRows = 999

// Joiners accepted by the sources tried so far. ORA accepts "&"; PLoS
// needs " AND ".
const (
	JoinerAmpersand = "&"
	JoinerAND       = " AND "
)

var (
	// ErrNotReady is returned when a fetch is attempted before SetEndpoint.
	ErrNotReady = errors.New("search needs an endpoint url")

	// ErrMissingID is returned when a fetched document has no id to key it by.
	ErrMissingID = errors.New("document has no id")
)

// Term is one field:value pair of the q expression.
type Term struct {
	Field string
	Value string
}

// Session is the mutable state of one search.
type Session struct {
	name     string
	endpoint string
	ready    bool
	joiner   string

	terms  []Term
	params map[string]string

	total   int
	latched bool
	cursor  int

	raw  []byte
	docs map[string]types.Document

	client *resty.Client
	logger *slog.Logger
}

// Option customizes a Session at construction.
type Option func(*Session)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJoiner sets the AND-joiner used between query terms.
func WithJoiner(j string) Option {
	return func(s *Session) { s.SetJoiner(j) }
}

// WithPageSize sets the rows parameter.
func WithPageSize(n int) Option {
	return func(s *Session) { s.SetRows(n) }
}

// New returns a session named name that issues requests through client.
// A nil client gets a default one without timeout.
func New(name string, client *resty.Client, opts ...Option) *Session {
	s := &Session{client: client, logger: slog.Default()}
	s.Reset(name)
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = httputil.NewClient(types.HTTPConfig{}, s.logger)
	}
	return s
}

// Reset returns the session to its defaults under a new name. The HTTP
// client and logger are kept.
func (s *Session) Reset(name string) {
	s.name = name
	s.endpoint = ""
	s.ready = false
	s.joiner = JoinerAmpersand
	s.terms = nil
	s.params = make(map[string]string)
	s.total = 0
	s.latched = false
	s.cursor = 0
	s.raw = nil
	s.docs = make(map[string]types.Document)
	s.SetJSON()
}

// clearQuery drops the terms, paging state and documents, keeping the
// endpoint, joiner and the remaining URL parameters.
func (s *Session) clearQuery() {
	s.terms = nil
	delete(s.params, ParamStart)
	s.total = 0
	s.latched = false
	s.cursor = 0
	s.raw = nil
	s.docs = make(map[string]types.Document)
}

// Name returns the label given at construction or reset.
func (s *Session) Name() string { return s.name }

// Endpoint returns the configured base URL.
func (s *Session) Endpoint() string { return s.endpoint }

// Ready reports whether an endpoint has been set.
func (s *Session) Ready() bool { return s.ready }

// Joiner returns the AND-joiner in use.
func (s *Session) Joiner() string { return s.joiner }

// TotalFound returns numFound as reported by the first page of the session.
func (s *Session) TotalFound() int { return s.total }

// Cursor returns the next start offset pagination will request.
func (s *Session) Cursor() int { return s.cursor }

// Raw returns the body of the last fetched page.
func (s *Session) Raw() []byte { return s.raw }

// Documents returns a copy of the accumulated documents keyed by id.
func (s *Session) Documents() map[string]types.Document {
	return maps.Clone(s.docs)
}

// Document returns the accumulated document with the given id.
func (s *Session) Document(id string) (types.Document, bool) {
	d, ok := s.docs[id]
	return d, ok
}

// Len returns the number of accumulated documents.
func (s *Session) Len() int { return len(s.docs) }

// Merge adds docs to the accumulated set, keyed by id. A document seen
// again replaces the earlier copy. The set never shrinks.
func (s *Session) Merge(docs []types.Document) error {
	for i, d := range docs {
		id, ok := d.ID()
		if !ok {
			return fmt.Errorf("merging document %d of page: %w", i, ErrMissingID)
		}
		s.docs[id] = d
	}
	return nil
}
