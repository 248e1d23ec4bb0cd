// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/internal/sources"
)

var idsCmd = &cobra.Command{
	Use:   "ids VALUE",
	Short: "List the ids of every record whose field matches a value",
	Long: `Ids searches a source for VALUE in --field (all fields by default),
requests only the id of each match, and prints the sorted unique ids one
per line. The discovery log (query, number found, number unique) goes to
stderr with --log.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceName, _ := cmd.Flags().GetString("source")
		field, _ := cmd.Flags().GetString("field")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		showLog, _ := cmd.Flags().GetBool("log")

		src, err := resolveSource(sourceName)
		if err != nil {
			return err
		}
		s := solr.New("IDs fetching", newClient(), solr.WithLogger(logger))
		sources.Configure(s, src)

		ids, log, err := s.ListMatchingIDs(context.Background(), src.Endpoint, args[0], field, pageSize)
		if showLog {
			log.Render(os.Stderr)
		}
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	idsCmd.Flags().String("source", sources.ORA, "source to search")
	idsCmd.Flags().String("field", "", "field to search (default: all fields)")
	idsCmd.Flags().Int("page-size", solr.MaxRows, "ids requested per page")
	idsCmd.Flags().Bool("log", false, "print the discovery log to stderr")

	rootCmd.AddCommand(idsCmd)
}
