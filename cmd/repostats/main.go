// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the repostats CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/repostats/internal/secrets"
	"github.com/pdiddy/repostats/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig is the configuration read by PersistentPreRunE.
	appConfig types.Config
	// loadedSecrets holds API keys loaded from the secrets directory at startup.
	loadedSecrets secrets.Store
	logger        = slog.Default()
)

// rootCmd is the base command for the repostats CLI.
var rootCmd = &cobra.Command{
	Use:   "repostats",
	Short: "Search and usage statistics for Solr-backed research repositories",
	Long: `repostats queries Solr search endpoints of institutional repositories
(ORA, PLoS, DataFinder) and reports on what they hold.

Subcommands run a search and print every matching document, list the ids
matching a field value, count records per day of a date field, and total
the views and downloads of the items matching a funder, content source or
any other field. Reports can be kept in a local database and exported.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(viper.GetBool("verbose"))
		slog.SetDefault(logger)

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./repostats.yaml or ~/.config/repostats/repostats.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests and paging at debug level")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of API key files")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("repostats")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "repostats"))
		}
	}

	viper.SetEnvPrefix("REPOSTATS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
