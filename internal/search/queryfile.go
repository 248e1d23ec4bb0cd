// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/pkg/types"
)

// QueryFile is a saved search: the query that ran and the documents it
// returned, so the results can be formatted again without querying.
type QueryFile struct {
	Query     QueryParams      `yaml:"query"`
	Documents []types.Document `yaml:"documents"`
	Summary   QuerySummary     `yaml:"summary"`
}

// QueryParams is the serializable form of a Query.
type QueryParams struct {
	Source     string      `yaml:"source"`
	URL        string      `yaml:"url,omitempty"`
	Terms      []TermParam `yaml:"terms"`
	Rows       int         `yaml:"rows,omitempty"`
	Fields     []string    `yaml:"fields,omitempty"`
	Sort       string      `yaml:"sort,omitempty"`
	Descending bool        `yaml:"descending,omitempty"`
}

// TermParam is one field:value term.
type TermParam struct {
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

// QuerySummary records result counts and when the search ran.
type QuerySummary struct {
	TotalFound int       `yaml:"total_found"`
	Documents  int       `yaml:"documents"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves q and out to a YAML file at path.
func WriteQueryFile(path string, q Query, out Output) error {
	qf := QueryFile{
		Query: QueryParams{
			Source:     out.Source,
			URL:        out.URL,
			Rows:       q.Rows,
			Fields:     q.Fields,
			Sort:       q.Sort,
			Descending: q.Descending,
		},
		Documents: plainDocuments(out.Documents),
		Summary: QuerySummary{
			TotalFound: out.TotalFound,
			Documents:  len(out.Documents),
			Timestamp:  time.Now().UTC(),
		},
	}
	for _, t := range q.Terms {
		qf.Query.Terms = append(qf.Query.Terms, TermParam{Field: t.Field, Value: t.Value})
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// plainDocuments copies docs with every json.Number replaced by an int64 or
// float64, so numbers are written to YAML as numbers and read back as such.
func plainDocuments(docs []types.Document) []types.Document {
	out := make([]types.Document, len(docs))
	for i, d := range docs {
		out[i] = plainValue(map[string]any(d)).(map[string]any)
	}
	return out
}

func plainValue(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = plainValue(e)
		}
		return m
	case types.Document:
		return plainValue(map[string]any(v))
	case []any:
		l := make([]any, len(v))
		for i, e := range v {
			l[i] = plainValue(e)
		}
		return l
	default:
		return v
	}
}

// ReadQueryFile loads a saved query file.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts the stored parameters back into a Query.
func (p QueryParams) ToQuery() Query {
	q := Query{Rows: p.Rows, Fields: p.Fields, Sort: p.Sort, Descending: p.Descending}
	for _, t := range p.Terms {
		q.Terms = append(q.Terms, solr.Term{Field: t.Field, Value: t.Value})
	}
	return q
}

// Output rebuilds the search output stored in the file.
func (qf *QueryFile) Output() Output {
	return Output{
		Source:     qf.Query.Source,
		URL:        qf.Query.URL,
		TotalFound: qf.Summary.TotalFound,
		Documents:  qf.Documents,
	}
}
