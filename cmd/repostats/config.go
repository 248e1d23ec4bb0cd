// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"

	"github.com/pdiddy/repostats/internal/httputil"
	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/internal/sources"
	"github.com/pdiddy/repostats/internal/store"
	"github.com/pdiddy/repostats/internal/vidcount"
	"github.com/pdiddy/repostats/pkg/types"
)

func setDefaults() {
	viper.SetDefault("http.timeout", 60*time.Second)
	viper.SetDefault("http.user_agent", httputil.DefaultUserAgent)

	viper.SetDefault("stats.source", sources.ORA)
	viper.SetDefault("stats.field", "timestamp")
	viper.SetDefault("stats.start_month", 1)
	viper.SetDefault("stats.end_month", 12)

	viper.SetDefault("views.source", sources.ORA)
	viper.SetDefault("views.stats_base_url", vidcount.DefaultStatsBaseURL)
	viper.SetDefault("views.local_root", vidcount.DefaultLocalRoot)
	viper.SetDefault("views.enable_remote", true)
	viper.SetDefault("views.remote_timeout", vidcount.DefaultRemoteTimeout)
	viper.SetDefault("views.output_dir", vidcount.DefaultOutputDir)
	viper.SetDefault("views.pause", vidcount.DefaultPause)
	viper.SetDefault("views.funders", vidcount.DefaultFunders)
	viper.SetDefault("views.content_sources", vidcount.DefaultContentSources)
	viper.SetDefault("views.custom", []map[string]string{
		{"field": vidcount.DefaultCustom[0].Field, "value": vidcount.DefaultCustom[0].Value},
		{"field": vidcount.DefaultCustom[1].Field, "value": vidcount.DefaultCustom[1].Value},
	})

	viper.SetDefault("store.dir", store.DefaultDir)
}

// loadConfig decodes the merged viper settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// newClient returns the HTTP client used for search requests.
func newClient() *resty.Client {
	return httputil.NewClient(appConfig.HTTP, logger)
}

// resolveSource looks up a source by name in the built-ins and config.
func resolveSource(name string) (types.SourceConfig, error) {
	return sources.Resolve(strings.ToLower(name), appConfig.Sources, loadedSecrets, logger)
}

// parseTerms reads "field=value" or "field:value" pairs.
func parseTerms(raw []string) ([]solr.Term, error) {
	out := make([]solr.Term, 0, len(raw))
	for _, r := range raw {
		i := strings.IndexAny(r, "=:")
		if i <= 0 {
			return nil, fmt.Errorf("term %q: want field=value", r)
		}
		out = append(out, solr.Term{Field: r[:i], Value: r[i+1:]})
	}
	return out, nil
}
