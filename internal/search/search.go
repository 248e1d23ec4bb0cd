// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs a complete search on a session and formats the
// accumulated documents as a table, JSON or CSL-YAML.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/pkg/types"
)

// Candidate field names, in order of preference, for the columns shown.
var (
	TitleFields  = []string{"title", "title_display"}
	AuthorFields = []string{"author", "creator", "author_display"}
	DateFields   = []string{"publication_date", "date", "creationDate", "timestamp"}
)

// ErrEmptyQuery is returned by Run when the query has no terms.
var ErrEmptyQuery = errors.New("query is empty: provide at least one field:value term")

// Query holds what a search asks for beyond the endpoint.
type Query struct {
	Terms      []solr.Term
	Rows       int
	Fields     []string
	Sort       string
	Descending bool
}

// IsEmpty reports whether the query has no terms.
func (q Query) IsEmpty() bool { return len(q.Terms) == 0 }

// Output holds the documents of a completed search, ordered by id.
type Output struct {
	Source     string
	URL        string
	TotalFound int
	Documents  []types.Document
}

// Run applies q to s and fetches every matching document. s must already
// point at an endpoint.
func Run(ctx context.Context, s *solr.Session, q Query) (Output, error) {
	if q.IsEmpty() {
		return Output{}, ErrEmptyQuery
	}
	for _, t := range q.Terms {
		s.Query(t.Field, t.Value)
	}
	if q.Rows > 0 {
		s.SetRows(q.Rows)
	}
	if len(q.Fields) > 0 {
		s.SetFields(q.Fields...)
	}
	if q.Sort != "" {
		s.SetSort(q.Sort, q.Descending)
	}

	out := Output{Source: s.Name(), URL: s.URL()}
	if err := s.FetchAll(ctx); err != nil {
		return out, err
	}
	out.TotalFound = s.TotalFound()
	out.Documents = sorted(s.Documents())
	return out, nil
}

func sorted(docs map[string]types.Document) []types.Document {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]types.Document, len(ids))
	for i, id := range ids {
		out[i] = docs[id]
	}
	return out
}

// first returns the first non-empty field of d among names.
func first(d types.Document, names []string) string {
	for _, n := range names {
		if v := d.String(n); v != "" {
			return v
		}
	}
	return ""
}

// FormatTable writes the documents as a table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Documents) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "ID", "Title", "Authors", "Date"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 60, WidthMaxEnforcer: text.Trim},
		{Number: 4, WidthMax: 24, WidthMaxEnforcer: text.Trim},
	})
	for i, d := range out.Documents {
		id, _ := d.ID()
		tw.AppendRow(table.Row{i + 1, id, first(d, TitleFields), formatAuthors(d), first(d, DateFields)})
	}
	tw.Render()

	fmt.Fprintf(w, "\n%d documents", len(out.Documents))
	if out.TotalFound != len(out.Documents) {
		fmt.Fprintf(w, " (%d reported found)", out.TotalFound)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the documents as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Documents)
}

func formatAuthors(d types.Document) string {
	for _, n := range AuthorFields {
		authors := d.Strings(n)
		switch len(authors) {
		case 0:
			continue
		case 1:
			return authors[0]
		default:
			return authors[0] + " et al."
		}
	}
	return ""
}
