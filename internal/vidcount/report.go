// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vidcount totals the views and downloads of every repository item
// matching a search, and writes dated report files for it.
package vidcount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/repostats/internal/audit"
	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/internal/sources"
	"github.com/pdiddy/repostats/pkg/types"
)

// Fields with dedicated setters.
const (
	FieldFunder        = "funder"
	FieldContentSource = "recordContentSource"
)

// Method log keys. They sort into the order the steps run, and interleave
// with the id discovery keys from package solr.
const (
	LogStart        = "1. Process start time"
	LogFindSeconds  = "3a. Seconds taken to find IDs"
	LogChecked      = "4a. Result IDs checked."
	LogWithResults  = "4b. Number with results"
	LogTimeouts     = "4b. Timeout issues"
	LogDecodeIssues = "4c. Decode issues"
	LogStatSeconds  = "4d. Seconds taken get results"
	LogViews        = "4e. Total number of views"
	LogDownloads    = "4f. Total number of downloads"
	LogEnd          = "9. Process end time"
)

const (
	timestampLayout  = "2006-01-02 15:04:05.000000"
	itemsHeader      = "views\tdownloads\titem\tsource\n"
	itemsTotalFormat = "%d\t%d\tTotals for all items.\n"
)

// ErrNotConfigured is returned by Run before a search has been set.
var ErrNotConfigured = errors.New("report needs a field and value to search for")

// Report counts views and downloads for the items matching field:value on
// a source.
type Report struct {
	source types.SourceConfig
	client *resty.Client
	reader *StatReader
	logger *slog.Logger
	now    func() time.Time

	field string
	value string
	ready bool

	ids       []string
	items     []ItemStat
	log       audit.Log
	views     int
	downloads int
	ranAt     time.Time
}

// NewReport returns a report that discovers ids on source through client
// and reads item statistics with reader.
func NewReport(source types.SourceConfig, client *resty.Client, reader *StatReader, logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Report{source: source, client: client, reader: reader, logger: logger, now: time.Now}
	r.Reset()
	return r
}

// Reset clears the search and all results.
func (r *Report) Reset() {
	r.field, r.value, r.ready = "", "", false
	r.clearResults()
}

func (r *Report) clearResults() {
	r.ids = nil
	r.items = nil
	r.log = audit.New()
	r.views, r.downloads = 0, 0
	r.ranAt = time.Time{}
}

// SetSearch selects the items whose field matches value. The value is
// lowercased.
func (r *Report) SetSearch(value, field string) {
	r.field = field
	r.value = strings.ToLower(value)
	r.ready = field != "" && r.value != ""
}

// SetFunder reports on items funded by value.
func (r *Report) SetFunder(value string) { r.SetSearch(value, FieldFunder) }

// SetContentSource reports on items from the given record content source.
func (r *Report) SetContentSource(value string) { r.SetSearch(value, FieldContentSource) }

// Accessors for the configured search and the results of the last Run.
func (r *Report) Field() string { return r.field }
func (r *Report) Value() string { return r.value }
func (r *Report) Views() int { return r.views }
func (r *Report) Downloads() int { return r.downloads }
func (r *Report) IDs() []string { return r.ids }
func (r *Report) Items() []ItemStat { return r.items }
func (r *Report) Log() audit.Log { return r.log }
func (r *Report) RanAt() time.Time { return r.ranAt }
func (r *Report) Source() types.SourceConfig { return r.source }

// Run discovers the matching ids and totals their statistics. Results of
// an earlier run are discarded first.
func (r *Report) Run(ctx context.Context) error {
	if !r.ready {
		return ErrNotConfigured
	}
	r.clearResults()
	r.ranAt = r.now()
	r.log.Set(LogStart, r.ranAt.Format(timestampLayout))

	start := time.Now()
	s := solr.New("IDs fetching", r.client, solr.WithLogger(r.logger))
	sources.Configure(s, r.source)
	ids, found, err := s.ListMatchingIDs(ctx, r.source.Endpoint, r.value, r.field, 0)
	r.log.Merge(found)
	if err != nil {
		return fmt.Errorf("finding %s items for %s: %w", r.field, r.value, err)
	}
	r.ids = ids
	r.log.Set(LogFindSeconds, time.Since(start).Seconds())
	r.logger.Info("found items", "field", r.field, "value", r.value, "count", len(ids))

	r.readStats(ctx)
	r.log.Set(LogEnd, r.now().Format(timestampLayout))
	return nil
}

func (r *Report) readStats(ctx context.Context) {
	start := time.Now()
	clean, opened, decoded := 0, 0, 0

	r.items = make([]ItemStat, 0, len(r.ids))
	for _, id := range r.ids {
		st := r.reader.Read(ctx, id)
		if st.Clean() {
			clean++
		}
		if st.OpenFailed {
			opened++
		}
		if st.DecodeFailed {
			decoded++
		}
		r.views += st.Views
		r.downloads += st.Downloads
		r.items = append(r.items, st)
	}

	r.log.Set(LogChecked, len(r.ids))
	r.log.Set(LogWithResults, clean)
	r.log.Set(LogTimeouts, opened)
	r.log.Set(LogDecodeIssues, decoded)
	r.log.Set(LogStatSeconds, time.Since(start).Seconds())
	r.log.Set(LogViews, r.views)
	r.log.Set(LogDownloads, r.downloads)
}

// Header returns the lines that open a saved report.
func (r *Report) Header(when string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report for - %s - %s on %s\t\n", r.field, r.value, when)
	fmt.Fprintf(&b, "%d\tViews\n", r.views)
	fmt.Fprintf(&b, "%d\tDownloads\n", r.downloads)
	b.WriteString("\n")
	return b.String()
}

// ItemsTSV returns one line per item followed by the totals line.
func (r *Report) ItemsTSV() string {
	var b strings.Builder
	b.WriteString(itemsHeader)
	for _, st := range r.items {
		fmt.Fprintf(&b, "%d\t%d\t%s\t%s\n", st.Views, st.Downloads, st.ID, st.Source)
	}
	fmt.Fprintf(&b, itemsTotalFormat, r.views, r.downloads)
	return b.String()
}

// Method returns the method log as tab-separated lines.
func (r *Report) Method() string {
	var b strings.Builder
	r.log.WriteTSV(&b)
	return b.String()
}
