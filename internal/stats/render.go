// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Level selects how much detail a summary shows.
type Level int

const (
	// Days lists every day with month, year and grand totals.
	Days Level = iota
	// Months lists month totals with year and grand totals.
	Months
	// Years lists year totals and the grand total.
	Years
)

// ParseLevel maps "days", "months" or "years" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "days", "day":
		return Days, nil
	case "months", "month":
		return Months, nil
	case "years", "year":
		return Years, nil
	}
	return 0, fmt.Errorf("unknown level %q (want days, months or years)", s)
}

func (l Level) String() string {
	switch l {
	case Months:
		return "months"
	case Years:
		return "years"
	default:
		return "days"
	}
}

var tsvHeaders = map[Level]string{
	Days:   "Year\tMonth\tDay\tDTotal\tMTotal\tYTotal\tTotal\n",
	Months: "Year\tMonth\tMTotal\tYTotal\tTotal\n",
	Years:  "Year\tYTotal\tTotal\n",
}

// CSV returns a header line and one "year,month,day,total" row per day.
func (t *Table) CSV() string {
	var b strings.Builder
	if err := t.WriteCSV(&b); err != nil {
		return ""
	}
	return b.String()
}

// WriteCSV writes the rows of CSV to w.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"year", "month", "day", "total"}); err != nil {
		return err
	}
	for _, e := range t.Entries() {
		row := []string{
			strconv.Itoa(e.Year), strconv.Itoa(e.Month),
			strconv.Itoa(e.Day), strconv.Itoa(e.Total),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TSV returns a tab-separated summary. Each total sits under its own column
// of the header. The header is repeated at the end for the Days and Months
// levels.
func (t *Table) TSV(level Level) string {
	header := tsvHeaders[level]
	var b strings.Builder
	b.WriteString(header)

	all := 0
	for _, y := range t.Years() {
		yearTotal := 0
		if level != Years {
			fmt.Fprintf(&b, "%d\n", y)
		}
		for _, m := range t.Months() {
			if level == Days {
				fmt.Fprintf(&b, "\t%d\n", m)
			}
			monthTotal := 0
			for d := 1; d <= DaysIn(y, m); d++ {
				n := t.totals[date{y, m, d}]
				monthTotal += n
				if level == Days {
					fmt.Fprintf(&b, "\t\t%d\t%d\n", d, n)
				}
			}
			yearTotal += monthTotal

			switch level {
			case Days:
				fmt.Fprintf(&b, "%d\t%d\t\t\t%d\n", y, m, monthTotal)
			case Months:
				fmt.Fprintf(&b, "%d\t%d\t%d\n", y, m, monthTotal)
			}
		}
		all += yearTotal

		switch level {
		case Days:
			fmt.Fprintf(&b, "%d\t\t\t\t\t%d\n", y, yearTotal)
		case Months:
			fmt.Fprintf(&b, "%d\t\t\t%d\n", y, yearTotal)
		default:
			fmt.Fprintf(&b, "%d\t%d\n", y, yearTotal)
		}
	}

	switch level {
	case Days:
		fmt.Fprintf(&b, "Total\t\t\t\t\t\t%d\n", all)
	case Months:
		fmt.Fprintf(&b, "Total\t\t\t\t%d\n", all)
	default:
		fmt.Fprintf(&b, "Total\t\t%d\n", all)
	}
	if level != Years {
		b.WriteString(header)
	}
	return b.String()
}

// Total returns the sum over every day.
func (t *Table) Total() int {
	n := 0
	for _, v := range t.totals {
		n += v
	}
	return n
}

// Render writes the totals at level as a table to w, with the grand total
// in the footer.
func (t *Table) Render(w io.Writer, level Level) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	switch level {
	case Days:
		tw.AppendHeader(table.Row{"Year", "Month", "Day", "Total"})
		t.walk(func(y, m, d, n int) {
			tw.AppendRow(table.Row{y, m, d, n})
		})
		tw.AppendFooter(table.Row{"Total", "", "", t.Total()})
	case Months:
		tw.AppendHeader(table.Row{"Year", "Month", "Total"})
		for _, y := range t.Years() {
			for _, m := range t.Months() {
				tw.AppendRow(table.Row{y, m, t.monthTotal(y, m)})
			}
			tw.AppendSeparator()
		}
		tw.AppendFooter(table.Row{"Total", "", t.Total()})
	default:
		tw.AppendHeader(table.Row{"Year", "Total"})
		for _, y := range t.Years() {
			n := 0
			for _, m := range t.Months() {
				n += t.monthTotal(y, m)
			}
			tw.AppendRow(table.Row{y, n})
		}
		tw.AppendFooter(table.Row{"Total", t.Total()})
	}
	tw.Render()
}

func (t *Table) monthTotal(year, month int) int {
	n := 0
	for d := 1; d <= DaysIn(year, month); d++ {
		n += t.totals[date{year, month, d}]
	}
	return n
}
