// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/repostats/internal/search"
	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/internal/sources"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a source and print every matching document",
	Long: `Search builds a query from the given terms, walks every result page of
the source and prints the documents found, keyed by id.

Terms are combined with the source's joiner ("&" for ORA, " AND " for PLoS).
Values are sent as given; quote phrases yourself, or use --title which
quotes for you. Use --load to format a saved search again without querying,
and add --refresh to run the saved query again.`,
	Example: `  repostats search --author cummings
  repostats search --source plos --title "chronic pain" --format csl
  repostats search --term funder=wellcome --fields id,title --save wellcome.yaml
  repostats search --load wellcome.yaml --refresh --save wellcome.yaml`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	sourceName, _ := cmd.Flags().GetString("source")
	refresh, _ := cmd.Flags().GetBool("refresh")

	var q search.Query
	if loadPath, _ := cmd.Flags().GetString("load"); loadPath != "" {
		qf, err := search.ReadQueryFile(loadPath)
		if err != nil {
			return err
		}
		if !refresh {
			return writeSearchOutput(qf.Output(), format)
		}
		q, sourceName = savedQuery(qf, sourceName)
	} else {
		if refresh {
			return fmt.Errorf("--refresh needs --load")
		}
		var err error
		if q, err = searchQueryFromFlags(cmd); err != nil {
			return err
		}
	}
	if q.IsEmpty() {
		return fmt.Errorf("query is empty: provide --author, --title, --id or --term")
	}

	src, err := resolveSource(sourceName)
	if err != nil {
		return err
	}

	s := solr.New(src.Name, newClient(), solr.WithLogger(logger))
	sources.Configure(s, src)

	if urlOnly, _ := cmd.Flags().GetBool("url"); urlOnly {
		for _, t := range q.Terms {
			s.Query(t.Field, t.Value)
		}
		fmt.Println(s.URL())
		return nil
	}

	out, err := search.Run(context.Background(), s, q)
	if err != nil {
		return err
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := search.WriteQueryFile(savePath, q, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d documents to %s\n", len(out.Documents), savePath)
	}
	return writeSearchOutput(out, format)
}

// savedQuery returns the query stored in qf and the source it ran against,
// or fallback when the file names none.
func savedQuery(qf *search.QueryFile, fallback string) (search.Query, string) {
	source := qf.Query.Source
	if source == "" {
		source = fallback
	}
	return qf.Query.ToQuery(), source
}

func searchQueryFromFlags(cmd *cobra.Command) (search.Query, error) {
	// A scratch session applies the convenience helpers' quoting rules.
	scratch := solr.New("flags", nil)
	if author, _ := cmd.Flags().GetString("author"); author != "" {
		scratch.QueryAuthor(author)
	}
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		scratch.QueryTitle(title, true)
	}
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		scratch.QueryID(id)
	}
	raw, _ := cmd.Flags().GetStringArray("term")
	terms, err := parseTerms(raw)
	if err != nil {
		return search.Query{}, err
	}
	for _, t := range terms {
		scratch.Query(t.Field, t.Value)
	}

	q := search.Query{Terms: scratch.Terms()}
	q.Rows, _ = cmd.Flags().GetInt("rows")
	q.Fields, _ = cmd.Flags().GetStringSlice("fields")
	q.Sort, _ = cmd.Flags().GetString("sort")
	q.Descending, _ = cmd.Flags().GetBool("desc")
	return q, nil
}

func writeSearchOutput(out search.Output, format string) error {
	switch format {
	case "json":
		return search.FormatJSON(out, os.Stdout)
	case "csl":
		return search.FormatCSL(out, os.Stdout)
	case "table", "":
		search.FormatTable(out, os.Stdout)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or csl)", format)
	}
}

func init() {
	searchCmd.Flags().String("source", sources.ORA, "source to search (ora, plos, datafinder8081, datafinder8000 or a configured name)")
	searchCmd.Flags().String("author", "", "search the author field")
	searchCmd.Flags().String("title", "", "search the title field for a phrase")
	searchCmd.Flags().String("id", "", `match an item id (sent as id:"uuid:<id>")`)
	searchCmd.Flags().StringArray("term", nil, "field=value term (repeatable)")
	searchCmd.Flags().Int("rows", solr.MaxRows, "page size, at most 999")
	searchCmd.Flags().StringSlice("fields", nil, "fields to return (fl), comma-separated")
	searchCmd.Flags().String("sort", "", "field to sort by")
	searchCmd.Flags().Bool("desc", false, "sort descending")
	searchCmd.Flags().String("format", "table", "output format: table, json or csl")
	searchCmd.Flags().String("save", "", "save the query and documents to a YAML file")
	searchCmd.Flags().String("load", "", "format documents from a saved YAML file instead of searching")
	searchCmd.Flags().Bool("refresh", false, "with --load, run the saved query again")
	searchCmd.Flags().Bool("url", false, "print the first request URL and exit")

	rootCmd.AddCommand(searchCmd)
}
