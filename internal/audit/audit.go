// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit records the steps of a report run as a human-readable,
// key-ordered table. Keys carry their own ordinal prefix ("2a. ...",
// "4b. ...") so lexical order is the order the steps were meant to be read in.
package audit

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Log maps step labels to the value observed at that step.
type Log map[string]any

// New returns an empty Log.
func New() Log {
	return make(Log)
}

// Set records value under key, replacing any previous value.
func (l Log) Set(key string, value any) {
	l[key] = value
}

// Get returns the value recorded under key.
func (l Log) Get(key string) (any, bool) {
	v, ok := l[key]
	return v, ok
}

// Merge copies every entry of other into l.
func (l Log) Merge(other Log) {
	for k, v := range other {
		l[k] = v
	}
}

// Len returns the number of entries.
func (l Log) Len() int { return len(l) }

// Keys returns the keys in lexical order.
func (l Log) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteTSV writes a "Report code\tResult" header followed by one
// tab-separated line per entry.
func (l Log) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprint(w, "Report code\tResult"); err != nil {
		return err
	}
	for _, k := range l.Keys() {
		if _, err := fmt.Fprintf(w, "\n%s\t%v", k, l[k]); err != nil {
			return err
		}
	}
	return nil
}

// Render writes the log as a table.
func (l Log) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Report code", "Result"})
	for _, k := range l.Keys() {
		t.AppendRow(table.Row{k, l[k]})
	}
	t.Render()
}
