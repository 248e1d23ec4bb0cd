// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. The
// filename is the key name and the trimmed file contents are the value, so
// .secrets/plos-api-key holds the key sent to the PLoS search API.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is where the CLI looks for secrets when none is configured.
const DefaultDir = ".secrets"

// Store maps secret names to values.
type Store map[string]string

// Lookup returns the named secret, or "" and false when it was not loaded.
func (s Store) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v, ok := s[name]
	return v, ok
}

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error; Load returns an empty Store. Unreadable files are logged and
// skipped.
func Load(dir string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}

	logger.Debug("loaded secrets", "dir", dir, "count", len(store))
	return store, nil
}
