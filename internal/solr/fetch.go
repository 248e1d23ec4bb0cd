// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/repostats/pkg/types"
)

// Response is the part of a Solr JSON reply the engine reads.
type Response struct {
	Header ResponseHeader `json:"responseHeader"`
	Result *ResultSet     `json:"response"`
}

// ResponseHeader echoes the request as the server understood it.
type ResponseHeader struct {
	Status int            `json:"status"`
	QTime  int            `json:"QTime"`
	Params map[string]any `json:"params"`
}

// ResultSet is one page of matching documents.
type ResultSet struct {
	NumFound int              `json:"numFound"`
	Start    int              `json:"start"`
	Docs     []types.Document `json:"docs"`
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search endpoint returned HTTP %d for %s", e.Code, e.URL)
}

var errNoResultSet = errors.New("response has no \"response\" object")

// FetchRaw issues one GET for URL() and keeps the body as the session's raw
// payload. Transport failures and non-2xx statuses are returned as errors;
// nothing is retried.
func (s *Session) FetchRaw(ctx context.Context) ([]byte, error) {
	u := s.URL()
	if u == "" {
		return nil, ErrNotReady
	}

	s.logger.Debug("fetching page", "search", s.name, "url", u)

	res, err := s.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", u, err)
	}
	if !res.IsSuccess() {
		return nil, &StatusError{Code: res.StatusCode(), URL: u}
	}

	s.raw = res.Body()
	return s.raw, nil
}

// ParseJSON decodes the last fetched payload.
func (s *Session) ParseJSON() (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(s.raw))
	dec.UseNumber()

	var r Response
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return &r, nil
}

// FetchPage fetches and parses one page. The first page of a session fixes
// TotalFound. The cursor moves to start + len(docs) + 1, which skips one
// offset between consecutive pages.
func (s *Session) FetchPage(ctx context.Context) ([]types.Document, error) {
	if _, err := s.FetchRaw(ctx); err != nil {
		return nil, err
	}
	r, err := s.ParseJSON()
	if err != nil {
		return nil, err
	}
	if r.Result == nil {
		return nil, fmt.Errorf("parsing search response: %w", errNoResultSet)
	}

	if !s.latched {
		s.total = r.Result.NumFound
		s.latched = true
	}
	s.cursor = r.Result.Start + len(r.Result.Docs) + 1

	s.logger.Debug("fetched page",
		"search", s.name,
		"start", r.Result.Start,
		"docs", len(r.Result.Docs),
		"num_found", r.Result.NumFound,
		"cursor", s.cursor,
	)
	return r.Result.Docs, nil
}

// FetchAll fetches pages and merges them until the cursor passes
// TotalFound. The loop stops only on that bound: a short or empty page
// before it still leads to another request. The start parameter the caller
// configured is restored afterwards, so a second call walks the same pages.
func (s *Session) FetchAll(ctx context.Context) error {
	origin, hadStart := s.Param(ParamStart)
	defer func() {
		if hadStart {
			s.SetParam(ParamStart, origin)
		} else {
			delete(s.params, ParamStart)
		}
	}()

	docs, err := s.FetchPage(ctx)
	if err != nil {
		return err
	}
	if err := s.Merge(docs); err != nil {
		return err
	}

	pages := 1
	for s.cursor <= s.total {
		s.SetStart(s.cursor)
		docs, err := s.FetchPage(ctx)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", pages+1, err)
		}
		if err := s.Merge(docs); err != nil {
			return err
		}
		pages++
	}

	s.logger.Debug("fetched all pages",
		"search", s.name,
		"pages", pages,
		"total_found", s.total,
		"documents", len(s.docs),
	)
	return nil
}
