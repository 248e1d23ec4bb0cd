// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/repostats/internal/httputil"
	"github.com/pdiddy/repostats/internal/store"
	"github.com/pdiddy/repostats/internal/vidcount"
	"github.com/pdiddy/repostats/pkg/types"
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Total the views and downloads of matching items",
	Long: `Views finds the items whose field matches a value, reads the
"downloads;views" statistics file of each item (a local copy first, then
the statistics host) and writes a dated report with the totals, the method
log and one line per item.`,
}

var viewsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one report",
	Example: `  repostats views run --funder jisc
  repostats views run --content-source polonsky --no-items
  repostats views run --field issn --value 1545-9993`,
	RunE: runViews,
}

var viewsBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the configured funder, content source and custom reports",
	Long: `Batch runs every report listed under views.funders, views.content_sources
and views.custom in the config, pausing views.pause between reports.`,
	RunE: runViewsBatch,
}

var viewsHistoryCmd = &cobra.Command{
	Use:   "history [FIELD [VALUE]]",
	Short: "Show recorded report totals",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runViewsHistory,
}

// statReader builds the per-item statistics reader from config.
func statReader(cfg types.ViewsConfig) *vidcount.StatReader {
	timeout := cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = vidcount.DefaultRemoteTimeout
	}
	return &vidcount.StatReader{
		LocalRoot:    cfg.LocalRoot,
		BaseURL:      cfg.StatsBaseURL,
		EnableRemote: cfg.EnableRemote,
		Client: httputil.NewClient(types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: appConfig.HTTP.UserAgent,
		}, logger),
	}
}

func recordReport(ctx context.Context, r *vidcount.Report) error {
	db, err := store.Open(appConfig.Store)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.RecordViews(ctx, store.ViewReport{
		Source:    r.Source().Name,
		Field:     r.Field(),
		Value:     r.Value(),
		Views:     r.Views(),
		Downloads: r.Downloads(),
		Items:     len(r.IDs()),
		RunAt:     r.RanAt(),
	})
	return err
}

func saveOptions(cmd *cobra.Command) vidcount.SaveOptions {
	noItems, _ := cmd.Flags().GetBool("no-items")
	noSummary, _ := cmd.Flags().GetBool("no-summary")
	ext, _ := cmd.Flags().GetString("ext")
	return vidcount.SaveOptions{Summary: !noSummary, Items: !noItems, Ext: ext}
}

func runViews(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Views
	src, err := resolveSource(cfg.Source)
	if err != nil {
		return err
	}

	r := vidcount.NewReport(src, newClient(), statReader(cfg), logger)
	funder, _ := cmd.Flags().GetString("funder")
	contentSource, _ := cmd.Flags().GetString("content-source")
	field, _ := cmd.Flags().GetString("field")
	value, _ := cmd.Flags().GetString("value")
	switch {
	case funder != "":
		r.SetFunder(funder)
	case contentSource != "":
		r.SetContentSource(contentSource)
	case field != "" && value != "":
		r.SetSearch(value, field)
	}

	ctx := context.Background()
	if err := r.Run(ctx); err != nil {
		return err
	}

	fmt.Print(r.Header(r.RanAt().UTC().Format("06-01-02 at 15:04:05")))
	if showLog, _ := cmd.Flags().GetBool("log"); showLog {
		r.Log().Render(os.Stdout)
	}

	path, err := r.Save(cfg.OutputDir, saveOptions(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Report written to", path)

	if record, _ := cmd.Flags().GetBool("record"); record {
		return recordReport(ctx, r)
	}
	return nil
}

func runViewsBatch(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Views
	src, err := resolveSource(cfg.Source)
	if err != nil {
		return err
	}

	b := &vidcount.Batch{
		Source:         src,
		Client:         newClient(),
		Reader:         statReader(cfg),
		Logger:         logger,
		Funders:        cfg.Funders,
		ContentSources: cfg.ContentSources,
		Custom:         cfg.Custom,
		Pause:          cfg.Pause,
		OutputDir:      cfg.OutputDir,
		Save:           saveOptions(cmd),
	}
	if record, _ := cmd.Flags().GetBool("record"); record {
		b.OnReport = recordReport
	}
	return b.Run(context.Background(), os.Stdout)
}

func runViewsHistory(cmd *cobra.Command, args []string) error {
	var field, value string
	if len(args) > 0 {
		field = args[0]
	}
	if len(args) > 1 {
		value = args[1]
	}

	db, err := store.Open(appConfig.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := db.ViewHistory(context.Background(), field, value)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No reports recorded.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run at", "Source", "Field", "Value", "Items", "Views", "Downloads"})
	for _, r := range reports {
		tw.AppendRow(table.Row{
			r.RunAt.Format("2006-01-02 15:04"), r.Source, r.Field, r.Value,
			r.Items, r.Views, r.Downloads,
		})
	}
	tw.Render()
	return nil
}

func init() {
	viewsCmd.PersistentFlags().String("source", "", "source used to find items (default from config: ora)")
	viewsCmd.PersistentFlags().String("output", "", "report root directory (default ./vidcount_export)")
	viewsCmd.PersistentFlags().Bool("no-items", false, "leave per-item lines out of the report")
	viewsCmd.PersistentFlags().Bool("no-summary", false, "leave the method log out of the report")
	viewsCmd.PersistentFlags().String("ext", "txt", "report file extension")
	viewsCmd.PersistentFlags().Bool("record", false, "record the totals in the local store")
	viewsCmd.PersistentFlags().Bool("no-remote", false, "read statistics from local files only")
	viper.BindPFlag("views.source", viewsCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("views.output_dir", viewsCmd.PersistentFlags().Lookup("output"))

	viewsRunCmd.Flags().String("funder", "", "report on items with this funder")
	viewsRunCmd.Flags().String("content-source", "", "report on items from this record content source")
	viewsRunCmd.Flags().String("field", "", "field for a custom report")
	viewsRunCmd.Flags().String("value", "", "value for a custom report")
	viewsRunCmd.Flags().Bool("log", false, "print the method log")

	viewsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if noRemote, _ := cmd.Flags().GetBool("no-remote"); noRemote {
			appConfig.Views.EnableRemote = false
		}
		return nil
	}

	viewsCmd.AddCommand(viewsRunCmd, viewsBatchCmd, viewsHistoryCmd)
	rootCmd.AddCommand(viewsCmd)
}
