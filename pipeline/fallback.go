// Package pipeline turns URLs into extraction results. It chains the fetch
// strategies, runs the per-URL stages and orchestrates batches of URLs into
// task outcomes.
package pipeline

import (
	"context"
	"errors"

	"github.com/fwojciec/sitelens"
)

// Ensure FallbackFetcher implements sitelens.Fetcher at compile time.
var _ sitelens.Fetcher = (*FallbackFetcher)(nil)

// FallbackFetcher tries a primary fetch strategy and, only when it fails, a
// fallback strategy. Either strategy may be nil.
type FallbackFetcher struct {
	primary  sitelens.Fetcher
	fallback sitelens.Fetcher
}

// NewFallbackFetcher creates a new FallbackFetcher.
func NewFallbackFetcher(primary, fallback sitelens.Fetcher) *FallbackFetcher {
	return &FallbackFetcher{primary: primary, fallback: fallback}
}

// Fetch normalizes rawURL and returns the page HTML. When every configured
// strategy fails the error is a *sitelens.FetchError carrying each reason.
func (f *FallbackFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	url := sitelens.NormalizeURL(rawURL)
	if url == "" {
		return "", sitelens.Errorf(sitelens.EINVALID, "URL required")
	}
	if f.primary == nil && f.fallback == nil {
		return "", sitelens.Errorf(sitelens.EINVALID, "no fetch strategy configured")
	}

	fetchErr := &sitelens.FetchError{URL: url}
	if f.primary != nil {
		html, err := f.primary.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		fetchErr.Primary = err
	}
	if f.fallback != nil && ctx.Err() == nil {
		html, err := f.fallback.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		fetchErr.Fallback = err
	}
	return "", fetchErr
}

// Close closes both strategies.
func (f *FallbackFetcher) Close() error {
	var errs []error
	for _, s := range []sitelens.Fetcher{f.primary, f.fallback} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
