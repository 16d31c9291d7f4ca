package sitelens

import "context"

// MinContentLength is the shortest page body a fetch strategy accepts.
// Anything shorter is treated as blocked or empty.
const MinContentLength = 100

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the page and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DomainLimiter paces requests per domain.
type DomainLimiter interface {
	// Wait blocks until a request to domain is permitted.
	Wait(ctx context.Context, domain string) error
}
