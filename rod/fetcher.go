// Package rod provides a headless Chrome implementation of sitelens.Fetcher
// for pages that need JavaScript to render.
package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds navigation and loading of a single page.
const DefaultFetchTimeout = 60 * time.Second

// DefaultSettleDelay is how long to wait after loading for late content.
const DefaultSettleDelay = 3 * time.Second

// DefaultIdleTimeout bounds the wait for network idle.
const DefaultIdleTimeout = 30 * time.Second

// DefaultIdleWindow is how long the network must stay quiet to count as idle.
const DefaultIdleWindow = 500 * time.Millisecond

// DefaultSelectorWait caps the wait for commerce markup after load.
const DefaultSelectorWait = 2 * time.Second

// fallbackWait is the pause taken when the network never goes idle.
const fallbackWait = 5 * time.Second

// CommerceSelectors match price, rating, review and structured-data markup
// that shops often render after the load event.
var CommerceSelectors = []string{
	`[itemprop="price"]`,
	`[class*="price"]`,
	`[itemprop="ratingValue"]`,
	`[class*="rating"]`,
	`[class*="review"]`,
	`script[type="application/ld+json"]`,
}

// UserAgent is presented by the browser for every page.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Viewport dimensions.
const (
	ViewportWidth  = 1920
	ViewportHeight = 1080
)

// Ensure Fetcher implements sitelens.Fetcher at compile time.
var _ sitelens.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager       *BrowserManager
	managerOpts   []ManagerOption
	timeout       time.Duration
	idleTimeout   time.Duration
	settle        time.Duration
	idleWindow    time.Duration
	waitSelectors []string
	selectorWait  time.Duration
	closed        atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page load timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettleDelay sets the pause between load and HTML capture.
func WithSettleDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithWaitSelectors replaces the selectors Fetch briefly waits for after
// load. Passing none disables the wait. Defaults to CommerceSelectors.
func WithWaitSelectors(selectors ...string) Option {
	return func(f *Fetcher) {
		f.waitSelectors = selectors
	}
}

// WithSelectorWait caps the wait for the wait selectors.
func WithSelectorWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.selectorWait = d
	}
}

// WithIdleTimeout bounds the wait for network idle. When it expires the
// fetcher pauses briefly and captures the page anyway.
func WithIdleTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.idleTimeout = d
	}
}

// WithManagerOptions passes options to the underlying BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:       DefaultFetchTimeout,
		idleTimeout:   DefaultIdleTimeout,
		settle:        DefaultSettleDelay,
		idleWindow:    DefaultIdleWindow,
		waitSelectors: CommerceSelectors,
		selectorWait:  DefaultSelectorWait,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", sitelens.Errorf(sitelens.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, release, err := f.manager.Page()
	if err != nil {
		return "", err
	}
	defer release()

	html, err := f.render(ctx, page, url)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", sitelens.Errorf(sitelens.EFETCH,
				"Page took too long to load (timeout: %ds). The website might be slow or blocking automated access.",
				int(f.timeout.Seconds()))
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to load page: %w", err)
	}

	if len(strings.TrimSpace(html)) < sitelens.MinContentLength {
		return "", sitelens.Errorf(sitelens.EFETCH,
			"Page content is too short or empty. The page might be blocked, require authentication, or have anti-bot protection.")
	}
	return html, nil
}

func (f *Fetcher) render(ctx context.Context, page *rod.Page, url string) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	p := page.Context(tctx)

	// The idle listener must be attached before navigation starts.
	idle, idleCancel := context.WithTimeout(tctx, f.idleTimeout)
	defer idleCancel()
	waitIdle := p.Context(idle).WaitRequestIdle(f.idleWindow, nil, nil, []proto.NetworkResourceType{
		proto.NetworkResourceTypeWebSocket,
		proto.NetworkResourceTypeEventSource,
	})

	if err := p.Navigate(url); err != nil {
		return "", err
	}
	if err := p.WaitLoad(); err != nil {
		if tctx.Err() != nil {
			return "", tctx.Err()
		}
		// Load event may never fire on some pages; DOM content is enough.
		if err := p.WaitDOMStable(time.Second, 0); err != nil {
			return "", err
		}
	}

	waitIdle()
	if err := tctx.Err(); err != nil {
		return "", err
	}
	if idle.Err() != nil {
		if err := sleep(tctx, fallbackWait); err != nil {
			return "", err
		}
	}

	// Missing markup is not an error; the page is captured once the cap expires.
	if len(f.waitSelectors) > 0 && f.selectorWait > 0 {
		_, _ = p.Timeout(f.selectorWait).Element(strings.Join(f.waitSelectors, ", "))
		if err := tctx.Err(); err != nil {
			return "", err
		}
	}

	if err := sleep(tctx, f.settle); err != nil {
		return "", err
	}

	return p.HTML()
}

// sleep pauses for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
