// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/repostats/internal/datecount"
	"github.com/pdiddy/repostats/internal/stats"
	"github.com/pdiddy/repostats/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count records per day of a date field",
	Long: `Stats counts, for every day of the selected years and months, the records
of a source whose date field falls on that day, and prints per-day,
per-month or per-year totals.

Counting issues one request per day, several hundred per year. Without
--fetch the counts are simulated (year+month+day+10000) so the range and
layout can be checked first. --from-store renders totals saved by an
earlier run with --save instead of querying.`,
	Example: `  repostats stats --start-year 2007 --level years --fetch
  repostats stats --field creationDate --level months --format table --fetch --save
  repostats stats --from-store --format csv`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	if listFields, _ := cmd.Flags().GetBool("list-fields"); listFields {
		fmt.Println(strings.Join(datecount.AvailableDateFields, "\n"))
		return nil
	}

	cfg := appConfig.Stats
	levelName, _ := cmd.Flags().GetString("level")
	level, err := stats.ParseLevel(levelName)
	if err != nil {
		return err
	}

	src, err := resolveSource(cfg.Source)
	if err != nil {
		return err
	}

	fetch, _ := cmd.Flags().GetBool("fetch")
	loader := &datecount.Loader{
		Endpoint: src.Endpoint,
		Field:    cfg.Field,
		Joiner:   src.AndJoiner,
		APIKey:   src.APIKey,
		KeyParam: src.APIKeyParam,
		Enabled:  fetch,
		Client:   newClient(),
		Logger:   logger,
	}

	tbl := stats.New(loader.Loader())
	now := time.Now().Year()
	startYear, endYear := cfg.StartYear, cfg.EndYear
	if startYear == 0 {
		startYear = now - 1
	}
	if endYear == 0 {
		endYear = now
	}
	if err := tbl.SetYears(startYear, endYear); err != nil {
		return err
	}
	if err := tbl.SetMonths(cfg.StartMonth, cfg.EndMonth); err != nil {
		return err
	}
	tbl.SetDelay(cfg.FetchDelay)

	ctx := context.Background()
	fromStore, _ := cmd.Flags().GetBool("from-store")
	save, _ := cmd.Flags().GetBool("save")

	if fromStore {
		db, err := store.Open(appConfig.Store)
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := db.FillTable(ctx, src.Name, cfg.Field, tbl)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Loaded %d of %d days from %s\n", n, tbl.Len(), db.Dir())
	} else {
		if !fetch {
			fmt.Fprintln(os.Stderr, "Simulating counts; pass --fetch to query", src.Endpoint)
		}
		fmt.Fprintf(os.Stderr, "Counting %s on %s, %d-%d\n", cfg.Field, src.Name, startYear, endYear)
		if err := tbl.Fetch(ctx, os.Stderr); err != nil {
			return err
		}
		if save && fetch {
			db, err := store.Open(appConfig.Store)
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := db.SaveTable(ctx, src.Name, cfg.Field, tbl)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved %d days to %s\n", n, db.Dir())
		} else if save {
			fmt.Fprintln(os.Stderr, "warning: simulated counts are not saved")
		}
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "tsv":
		fmt.Print(tbl.TSV(level))
	case "csv":
		return tbl.WriteCSV(os.Stdout)
	case "table":
		tbl.Render(os.Stdout, level)
	default:
		return fmt.Errorf("unknown format %q (want tsv, csv or table)", format)
	}
	return nil
}

func init() {
	statsCmd.Flags().String("source", "", "source to count (default from config: ora)")
	statsCmd.Flags().String("field", "", "date field to count (see --list-fields)")
	statsCmd.Flags().Int("start-year", 0, "first year, inclusive (default: last year)")
	statsCmd.Flags().Int("end-year", 0, "last year, inclusive (default: this year)")
	statsCmd.Flags().Int("start-month", 0, "first month, inclusive (default 1)")
	statsCmd.Flags().Int("end-month", 0, "last month, inclusive (default 12)")
	statsCmd.Flags().Duration("delay", 0, "pause between requests")
	statsCmd.Flags().String("level", "years", "detail: days, months or years")
	statsCmd.Flags().String("format", "tsv", "output format: tsv, csv or table")
	statsCmd.Flags().Bool("fetch", false, "query the source instead of simulating counts")
	statsCmd.Flags().Bool("save", false, "save fetched totals to the local store")
	statsCmd.Flags().Bool("from-store", false, "render totals from the local store")
	statsCmd.Flags().Bool("list-fields", false, "list the known date fields and exit")

	for flag, key := range map[string]string{
		"source":      "stats.source",
		"field":       "stats.field",
		"start-year":  "stats.start_year",
		"end-year":    "stats.end_year",
		"start-month": "stats.start_month",
		"end-month":   "stats.end_month",
		"delay":       "stats.fetch_delay",
	} {
		viper.BindPFlag(key, statsCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(statsCmd)
}
