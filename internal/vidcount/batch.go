// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vidcount

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/repostats/pkg/types"
)

// DefaultPause separates consecutive reports of a batch.
const DefaultPause = 10 * time.Second

// Defaults for the standard ORA batch.
var (
	DefaultFunders        = []string{"JISC", "wellcome"}
	DefaultContentSources = []string{"polonsky"}
	DefaultCustom         = []types.CustomReport{
		{Field: "issn", Value: "1545-9993"},
		{Field: "author", Value: "comina"},
	}
)

// Batch runs a fixed list of reports one after another: funders first,
// then content sources, then custom field/value pairs.
type Batch struct {
	Source types.SourceConfig
	Client *resty.Client
	Reader *StatReader
	Logger *slog.Logger

	Funders        []string
	ContentSources []string
	Custom         []types.CustomReport

	// Pause is waited after every report.
	Pause time.Duration
	// OutputDir is the root passed to Report.Save.
	OutputDir string
	Save      SaveOptions

	// OnReport, when set, is called after each report is saved.
	OnReport func(ctx context.Context, r *Report) error
}

// Reports returns the field/value pairs the batch will run, in order.
func (b *Batch) Reports() []types.CustomReport {
	var out []types.CustomReport
	for _, f := range b.Funders {
		out = append(out, types.CustomReport{Field: FieldFunder, Value: f})
	}
	for _, c := range b.ContentSources {
		out = append(out, types.CustomReport{Field: FieldContentSource, Value: c})
	}
	return append(out, b.Custom...)
}

// Run runs every report and stops at the first failure. Progress goes to w.
func (b *Batch) Run(ctx context.Context, w io.Writer) error {
	if w == nil {
		w = io.Discard
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := b.Save
	if opts == (SaveOptions{}) {
		opts = DefaultSaveOptions
	}

	reports := b.Reports()
	for i, want := range reports {
		fmt.Fprintf(w, "[%d/%d] %s = %s\n", i+1, len(reports), want.Field, want.Value)

		r := NewReport(b.Source, b.Client, b.Reader, logger)
		r.SetSearch(want.Value, want.Field)
		if err := r.Run(ctx); err != nil {
			return fmt.Errorf("report %s=%s: %w", want.Field, want.Value, err)
		}
		path, err := r.Save(b.OutputDir, opts)
		if err != nil {
			return fmt.Errorf("saving report %s=%s: %w", want.Field, want.Value, err)
		}
		fmt.Fprintf(w, "  %d items, %d views, %d downloads -> %s\n",
			len(r.IDs()), r.Views(), r.Downloads(), path)

		if b.OnReport != nil {
			if err := b.OnReport(ctx, r); err != nil {
				return err
			}
		}

		if b.Pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Pause):
			}
		}
	}
	return nil
}
