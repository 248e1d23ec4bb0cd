// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats collects one total per calendar day over a range of years
// and months and renders the totals as CSV, tab-separated summaries or a
// table.
package stats

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Loader returns the total for one day.
type Loader func(ctx context.Context, year, month, day int) (int, error)

// SimulatedLoader returns year+month+day+10000 without touching any source.
// The values are obviously fake so a dry run is never mistaken for data.
func SimulatedLoader(_ context.Context, year, month, day int) (int, error) {
	return year + month + day + 10000, nil
}

// Entry is the total stored for one day.
type Entry struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
	Total int `json:"total" yaml:"total"`
}

type date struct{ year, month, day int }

// Table holds daily totals for an inclusive year range and month range.
type Table struct {
	startYear, endYear   int
	startMonth, endMonth int

	loader Loader
	delay  time.Duration
	now    func() time.Time

	totals map[date]int
}

// New returns a table covering last year and this year, January to
// December. A nil loader uses SimulatedLoader.
func New(loader Loader) *Table {
	if loader == nil {
		loader = SimulatedLoader
	}
	t := &Table{loader: loader, now: time.Now}
	t.Reset()
	return t
}

// Reset restores the default ranges and clears all totals.
func (t *Table) Reset() {
	year := t.now().Year()
	t.startYear, t.endYear = year-1, year
	t.startMonth, t.endMonth = 1, 12
	t.resetStore()
}

// SetYears sets the inclusive year range and clears all totals.
func (t *Table) SetYears(start, end int) error {
	if end < start {
		return fmt.Errorf("year range %d-%d is empty", start, end)
	}
	t.startYear, t.endYear = start, end
	t.resetStore()
	return nil
}

// SetMonths sets the inclusive month range and clears all totals.
func (t *Table) SetMonths(start, end int) error {
	if start < 1 || end > 12 || end < start {
		return fmt.Errorf("month range %d-%d is not within 1-12", start, end)
	}
	t.startMonth, t.endMonth = start, end
	t.resetStore()
	return nil
}

// SetDelay sets the pause between consecutive loader calls in Fetch.
func (t *Table) SetDelay(d time.Duration) { t.delay = d }

// Years returns the configured years in order.
func (t *Table) Years() []int { return span(t.startYear, t.endYear) }

// Months returns the configured months in order.
func (t *Table) Months() []int { return span(t.startMonth, t.endMonth) }

func span(a, b int) []int {
	out := make([]int, 0, b-a+1)
	for i := a; i <= b; i++ {
		out = append(out, i)
	}
	return out
}

// DaysIn returns the number of days in month of year.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (t *Table) resetStore() {
	t.totals = make(map[date]int)
	for _, y := range t.Years() {
		for _, m := range t.Months() {
			for d := 1; d <= DaysIn(y, m); d++ {
				t.totals[date{y, m, d}] = 0
			}
		}
	}
}

// Set stores the total for one day inside the configured range.
func (t *Table) Set(year, month, day, total int) error {
	k := date{year, month, day}
	if _, ok := t.totals[k]; !ok {
		return fmt.Errorf("day %04d-%02d-%02d is outside the table", year, month, day)
	}
	t.totals[k] = total
	return nil
}

// Get returns the total stored for one day.
func (t *Table) Get(year, month, day int) (int, bool) {
	n, ok := t.totals[date{year, month, day}]
	return n, ok
}

// Len returns the number of days covered.
func (t *Table) Len() int { return len(t.totals) }

// Entries returns every day in calendar order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.totals))
	t.walk(func(y, m, d, n int) {
		out = append(out, Entry{Year: y, Month: m, Day: d, Total: n})
	})
	return out
}

func (t *Table) walk(fn func(year, month, day, total int)) {
	for _, y := range t.Years() {
		for _, m := range t.Months() {
			for d := 1; d <= DaysIn(y, m); d++ {
				fn(y, m, d, t.totals[date{y, m, d}])
			}
		}
	}
}

// Fetch calls the loader once for every day of the table, in calendar
// order, and stores the results. Progress is written to w, one line per
// month. The first loader error stops the fetch; totals already loaded are
// kept.
func (t *Table) Fetch(ctx context.Context, w io.Writer) error {
	if w == nil {
		w = io.Discard
	}
	first := true
	for _, y := range t.Years() {
		for _, m := range t.Months() {
			days := DaysIn(y, m)
			for d := 1; d <= days; d++ {
				if !first && t.delay > 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(t.delay):
					}
				}
				first = false

				n, err := t.loader(ctx, y, m, d)
				if err != nil {
					return fmt.Errorf("loading %04d-%02d-%02d: %w", y, m, d, err)
				}
				t.totals[date{y, m, d}] = n
			}
			fmt.Fprintf(w, "  fetched %04d-%02d (%d days)\n", y, m, days)
		}
	}
	return nil
}
