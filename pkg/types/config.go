// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the client without one.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "repostats/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceConfig describes one Solr search endpoint.
type SourceConfig struct {
	// Name is the short name used on the command line (e.g. "ora").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Endpoint is the base URL the encoded parameters are appended to.
	// It normally ends in "?".
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// AndJoiner combines query terms: "&" for ORA, " AND " for PLoS.
	AndJoiner string `json:"and_joiner" yaml:"and_joiner" mapstructure:"and_joiner"`

	// APIKeyParam is the URL parameter carrying the API key, if the source needs one.
	APIKeyParam string `json:"api_key_param,omitempty" yaml:"api_key_param,omitempty" mapstructure:"api_key_param"`

	// APIKeySecret names the file in .secrets/ holding the key.
	APIKeySecret string `json:"api_key_secret,omitempty" yaml:"api_key_secret,omitempty" mapstructure:"api_key_secret"`

	// APIKey is the resolved key value. Usually filled from secrets.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`
}

// StatsConfig holds settings for the daily statistics report.
type StatsConfig struct {
	// Source is the source name whose endpoint is counted (default "ora").
	Source string `json:"source" yaml:"source" mapstructure:"source"`

	// Field is the date field searched for each day (default "timestamp").
	Field string `json:"field" yaml:"field" mapstructure:"field"`

	// StartYear and EndYear bound the inclusive year range. Zero means
	// previous year and current year respectively.
	StartYear int `json:"start_year" yaml:"start_year" mapstructure:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year" mapstructure:"end_year"`

	// StartMonth and EndMonth bound the inclusive month range (default 1-12).
	StartMonth int `json:"start_month" yaml:"start_month" mapstructure:"start_month"`
	EndMonth   int `json:"end_month" yaml:"end_month" mapstructure:"end_month"`

	// FetchDelay is the pause between consecutive per-day requests.
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay" mapstructure:"fetch_delay"`
}

// CustomReport is a single field/value pair reported on by the views batch.
type CustomReport struct {
	Field string `json:"field" yaml:"field" mapstructure:"field"`
	Value string `json:"value" yaml:"value" mapstructure:"value"`
}

// ViewsConfig holds settings for the views and downloads reports.
type ViewsConfig struct {
	// Source is the source name used to discover item IDs (default "ora").
	Source string `json:"source" yaml:"source" mapstructure:"source"`

	// StatsBaseURL is the remote host serving per-item "downloads;views" files.
	StatsBaseURL string `json:"stats_base_url" yaml:"stats_base_url" mapstructure:"stats_base_url"`

	// LocalRoot is checked for a local copy of each stats file before the remote.
	LocalRoot string `json:"local_root" yaml:"local_root" mapstructure:"local_root"`

	// EnableRemote allows falling back to StatsBaseURL when the local file is missing.
	EnableRemote bool `json:"enable_remote" yaml:"enable_remote" mapstructure:"enable_remote"`

	// RemoteTimeout bounds each remote stats request (default 5s).
	RemoteTimeout time.Duration `json:"remote_timeout" yaml:"remote_timeout" mapstructure:"remote_timeout"`

	// OutputDir is where report files are written (default "vidcount_export").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Pause is the delay between reports in a batch (default 10s).
	Pause time.Duration `json:"pause" yaml:"pause" mapstructure:"pause"`

	// Funders, ContentSources and Custom list the batch reports.
	Funders        []string       `json:"funders" yaml:"funders" mapstructure:"funders"`
	ContentSources []string       `json:"content_sources" yaml:"content_sources" mapstructure:"content_sources"`
	Custom         []CustomReport `json:"custom" yaml:"custom" mapstructure:"custom"`
}

// StoreConfig holds settings for the local report history database.
type StoreConfig struct {
	// Dir is the directory holding repostats.db and exports (default "data").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config groups all configuration read from repostats.yaml.
type Config struct {
	HTTP    HTTPConfig              `json:"http" yaml:"http" mapstructure:"http"`
	Sources map[string]SourceConfig `json:"sources" yaml:"sources" mapstructure:"sources"`
	Stats   StatsConfig             `json:"stats" yaml:"stats" mapstructure:"stats"`
	Views   ViewsConfig             `json:"views" yaml:"views" mapstructure:"views"`
	Store   StoreConfig             `json:"store" yaml:"store" mapstructure:"store"`
}
