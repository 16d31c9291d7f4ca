// Package slog provides logging decorators for sitelens services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelens"
)

// Ensure LoggingFetcher implements sitelens.Fetcher.
var _ sitelens.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   sitelens.Fetcher
	logger *slog.Logger
	name   string
}

// NewLoggingFetcher creates a new LoggingFetcher. The name distinguishes
// browser and HTTP fetchers in the log.
func NewLoggingFetcher(next sitelens.Fetcher, logger *slog.Logger, name string) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger, name: name}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"fetcher", f.name,
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
