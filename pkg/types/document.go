// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for repostats: configuration
// and the documents returned by Solr search endpoints.
package types

import (
	"encoding/json"
	"fmt"
)

// Document is one bibliographic record as returned in response.docs. Field
// sets vary per source and per "fl" projection, so the record is kept as a
// generic map. Numbers are held as json.Number to round-trip unchanged.
type Document map[string]any

// ID returns the record's "id" field as a string. Numeric ids are rendered
// in their decimal form. ok is false when the field is missing or empty.
func (d Document) ID() (id string, ok bool) {
	v, present := d["id"]
	if !present || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

// String returns the named field as a string. Multi-valued fields are
// joined with "; ".
func (d Document) String(field string) string {
	switch t := d[field].(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		var s string
		for i, v := range t {
			if i > 0 {
				s += "; "
			}
			s += fmt.Sprint(v)
		}
		return s
	default:
		return fmt.Sprint(t)
	}
}

// Strings returns the named field as a list of strings. A single value
// becomes a one-element list.
func (d Document) Strings(field string) []string {
	switch t := d[field].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			out = append(out, fmt.Sprint(v))
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
