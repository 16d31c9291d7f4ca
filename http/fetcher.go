// Package http provides a plain HTTP implementation of sitelens.Fetcher,
// used as the fallback when browser rendering fails.
package http

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cenkalti/backoff/v4"
	"github.com/fwojciec/sitelens"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxRetries is how many times a retryable response is retried.
const DefaultMaxRetries = 3

// DefaultBackoff is the first retry delay; later delays double.
const DefaultBackoff = time.Second

// UserAgent is sent with every request.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 20 << 20

// Ensure Fetcher implements sitelens.Fetcher at compile time.
var _ sitelens.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxRetries sets how many times 429 and 5xx responses are retried.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBackoff sets the initial retry delay.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		f.backoff = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:    DefaultFetchTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL, retrying 429 and
// 5xx responses with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.backoff
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	var html string
	op := func() error {
		body, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		html = body
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.maxRetries)), ctx))
	if err != nil {
		return "", err
	}

	if len(strings.TrimSpace(html)) < sitelens.MinContentLength {
		return "", sitelens.Errorf(sitelens.EFETCH, "Page content is too short or empty.")
	}
	return html, nil
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP request failed: %d %s for %s", e.code, http.StatusText(e.code), e.url)
}

func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// get performs one attempt. Errors that should not be retried are wrapped
// in backoff.Permanent.
func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(sitelens.Errorf(sitelens.EINVALID, "invalid URL %q: %v", url, err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", backoff.Permanent(sitelens.Errorf(sitelens.EFETCH,
				"Request timed out after %d seconds.", int(f.timeout.Seconds())))
		}
		return "", backoff.Permanent(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &statusError{code: resp.StatusCode, url: url}
		if retryable(resp.StatusCode) {
			return "", serr
		}
		return "", backoff.Permanent(serr)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("reading response from %s: %w", url, err))
	}
	return body, nil
}

// decodeBody undoes the content encoding and converts the body to UTF-8
// according to its declared charset.
func decodeBody(resp *http.Response) (string, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return "", err
		}
		defer gz.Close()
		r = gz
	case "deflate":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return "", err
		}
		defer zr.Close()
		r = zr
	case "br":
		r = brotli.NewReader(r)
	}

	utf8Reader, err := charset.NewReader(io.LimitReader(r, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
