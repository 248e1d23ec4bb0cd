// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources holds the catalogue of known Solr endpoints and resolves a
// source name into the settings a search session needs.
package sources

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pdiddy/repostats/internal/secrets"
	"github.com/pdiddy/repostats/internal/solr"
	"github.com/pdiddy/repostats/pkg/types"
)

// Names of the built-in sources.
const (
	ORA            = "ora"
	PLoS           = "plos"
	Datafinder8081 = "datafinder8081"
	Datafinder8000 = "datafinder8000"
)

var builtins = map[string]types.SourceConfig{
	ORA: {
		Name:      ORA,
		Endpoint:  "http://ora.ox.ac.uk/solr/?",
		AndJoiner: solr.JoinerAmpersand,
	},
	PLoS: {
		Name:         PLoS,
		Endpoint:     "http://api.plos.org/search?",
		AndJoiner:    solr.JoinerAND,
		APIKeyParam:  solr.DefaultAPIKeyParam,
		APIKeySecret: "plos-api-key",
	},
	Datafinder8081: {
		Name:      Datafinder8081,
		Endpoint:  "http://datafinder-d2v.bodleian.ox.ac.uk:8081/solr/select?",
		AndJoiner: solr.JoinerAmpersand,
	},
	Datafinder8000: {
		Name:      Datafinder8000,
		Endpoint:  "http://datafinder-d2v.bodleian.ox.ac.uk:8000/solr/select?",
		AndJoiner: solr.JoinerAmpersand,
	},
}

// Builtin returns the built-in settings for name.
func Builtin(name string) (types.SourceConfig, bool) {
	src, ok := builtins[name]
	return src, ok
}

// Names lists the built-in sources and any configured ones, sorted.
func Names(overrides map[string]types.SourceConfig) []string {
	seen := make(map[string]bool, len(builtins)+len(overrides))
	for n := range builtins {
		seen[n] = true
	}
	for n := range overrides {
		seen[n] = true
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the settings for name: the built-in entry with any
// non-empty fields of overrides[name] laid over it. A name that is neither
// built in nor configured is an error, as is a configured source without an
// endpoint. When the source names an API key secret and no key was
// configured, the key is taken from store; a key still missing is logged to
// logger, or slog.Default() when nil.
func Resolve(name string, overrides map[string]types.SourceConfig, store secrets.Store, logger *slog.Logger) (types.SourceConfig, error) {
	src, known := builtins[name]
	if o, ok := overrides[name]; ok {
		known = true
		src = overlay(src, o)
	}
	if !known {
		return types.SourceConfig{}, fmt.Errorf("unknown source %q (known: %v)", name, Names(overrides))
	}
	src.Name = name
	if src.Endpoint == "" {
		return types.SourceConfig{}, fmt.Errorf("source %q has no endpoint", name)
	}
	if src.AndJoiner == "" {
		src.AndJoiner = solr.JoinerAmpersand
	}
	if src.APIKey == "" {
		if key, ok := store.Lookup(src.APIKeySecret); ok {
			src.APIKey = key
		}
	}
	if src.APIKeySecret != "" && src.APIKey == "" {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("source needs an API key but none was found",
			"source", name, "secret", src.APIKeySecret)
	}
	return src, nil
}

func overlay(base, o types.SourceConfig) types.SourceConfig {
	if o.Endpoint != "" {
		base.Endpoint = o.Endpoint
	}
	if o.AndJoiner != "" {
		base.AndJoiner = o.AndJoiner
	}
	if o.APIKeyParam != "" {
		base.APIKeyParam = o.APIKeyParam
	}
	if o.APIKeySecret != "" {
		base.APIKeySecret = o.APIKeySecret
	}
	if o.APIKey != "" {
		base.APIKey = o.APIKey
	}
	return base
}

// Configure points s at src: endpoint, joiner and, when present, the API key.
func Configure(s *solr.Session, src types.SourceConfig) {
	s.SetEndpoint(src.Endpoint)
	s.SetJoiner(src.AndJoiner)
	if src.APIKey != "" {
		s.SetAPIKey(src.APIKey, src.APIKeyParam)
	}
}
