package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelens"
)

// Ensure LoggingScraper implements sitelens.Scraper.
var _ sitelens.Scraper = (*LoggingScraper)(nil)

// LoggingScraper wraps a Scraper with per-URL logging.
type LoggingScraper struct {
	next   sitelens.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next sitelens.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape logs the outcome of processing one URL.
func (s *LoggingScraper) Scrape(ctx context.Context, req sitelens.ScrapeRequest, progress sitelens.ProgressFunc) (res *sitelens.ScrapeResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", req.URL,
			"domain", req.Domain,
			"duration", time.Since(begin),
		}
		if res != nil {
			attrs = append(attrs, "language", res.Language, "hash", res.ContentHash)
		}
		if err != nil {
			attrs = append(attrs, "code", sitelens.ErrorCode(err), "err", err)
			s.logger.Warn("scrape", attrs...)
			return
		}
		s.logger.Info("scrape", attrs...)
	}(time.Now())
	return s.next.Scrape(ctx, req, progress)
}
