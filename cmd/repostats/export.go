// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/repostats/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored daily totals and views reports to YAML and JSON",
	Long: `Export writes every daily total and views report kept in the local store
to export.yaml and export.json next to the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(appConfig.Store)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		onlyJSON, _ := cmd.Flags().GetBool("json")
		onlyYAML, _ := cmd.Flags().GetBool("yaml")

		if !onlyJSON {
			path, err := db.ExportYAML(ctx)
			if err != nil {
				return fmt.Errorf("exporting YAML: %w", err)
			}
			fmt.Println("Wrote", path)
		}
		if !onlyYAML {
			path, err := db.ExportJSON(ctx)
			if err != nil {
				return fmt.Errorf("exporting JSON: %w", err)
			}
			fmt.Println("Wrote", path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().Bool("json", false, "write only export.json")
	exportCmd.Flags().Bool("yaml", false, "write only export.yaml")
	exportCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	exportCmd.Flags().String("dir", "", "store directory (default from config: data)")
	viper.BindPFlag("store.dir", exportCmd.Flags().Lookup("dir"))

	rootCmd.AddCommand(exportCmd)
}
