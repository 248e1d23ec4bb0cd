// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/repostats/pkg/types"
)

// DefaultUserAgent is sent when the configuration does not name one.
const DefaultUserAgent = "repostats/0.1"

// NewClient returns a resty client configured from cfg. The client never
// retries: a failed request is reported to the caller as-is. A zero
// Timeout leaves the client without one. Each response is logged at debug
// level on logger (slog.Default when nil).
func NewClient(cfg types.HTTPConfig, logger *slog.Logger) *resty.Client {
	if logger == nil {
		logger = slog.Default()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	client := resty.New()
	client.SetHeader("User-Agent", ua)
	client.SetRetryCount(0)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.Debug("http response",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"bytes", len(res.Body()),
			"elapsed", res.Time(),
		)
		return nil
	})

	return client
}
