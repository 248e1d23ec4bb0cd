// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vidcount

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir is used below the working directory when no root is given.
const DefaultOutputDir = "vidcount_export"

// whenLayout renders times as "yy-mm-dd at HH:MM:SS".
const whenLayout = "06-01-02 at 15:04:05"

const (
	summaryHeader = "Date\tTime\tViews\tDownloads\n"
	methodBanner  = "Processing summary =====================\n"
	itemsBanner   = "\n\nResults for each item.===================\n"
)

// SaveOptions selects what a saved report contains.
type SaveOptions struct {
	Summary bool
	Items   bool
	Ext     string
}

// DefaultSaveOptions writes everything to a .txt file.
var DefaultSaveOptions = SaveOptions{Summary: true, Items: true, Ext: "txt"}

// OutputDir returns root/field/value, creating it. An empty root means
// DefaultOutputDir in the working directory.
func (r *Report) OutputDir(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("finding working directory: %w", err)
		}
		root = filepath.Join(wd, DefaultOutputDir)
	}
	dir := filepath.Join(root, r.field, r.value)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	return dir, nil
}

// Save writes the report to <root>/<field>/<value>/<when>.<ext>, where when
// is the current UTC time, and appends the totals to summary_<value>.tsv in
// the same directory. It returns the report path.
func (r *Report) Save(root string, opts SaveOptions) (string, error) {
	if opts.Ext == "" {
		opts.Ext = DefaultSaveOptions.Ext
	}
	dir, err := r.OutputDir(root)
	if err != nil {
		return "", err
	}
	when := r.now().UTC().Format(whenLayout)

	if err := r.appendSummary(dir, when); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(r.Header(when))
	if opts.Summary {
		b.WriteString(methodBanner)
		b.WriteString(r.Method())
	}
	if opts.Items {
		b.WriteString(itemsBanner)
		b.WriteString(r.ItemsTSV())
	} else {
		b.WriteString("\n")
	}

	path := filepath.Join(dir, when+"."+opts.Ext)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	r.logger.Info("saved report", "path", path)
	return path, nil
}

// SummaryPath returns the running summary file for the report's value in dir.
func (r *Report) SummaryPath(dir string) string {
	return filepath.Join(dir, "summary_"+r.value+".tsv")
}

func (r *Report) appendSummary(dir, when string) error {
	path := r.SummaryPath(dir)
	_, err := os.Stat(path)
	fresh := errors.Is(err, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary: %w", err)
	}
	defer f.Close()

	if fresh {
		if _, err := f.WriteString(summaryHeader); err != nil {
			return fmt.Errorf("writing summary header: %w", err)
		}
	}
	date, clock, _ := strings.Cut(when, " at ")
	if _, err := fmt.Fprintf(f, "%s\t%s\t%d\t%d\n", date, clock, r.views, r.downloads); err != nil {
		return fmt.Errorf("appending summary: %w", err)
	}
	return nil
}
