package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/sitelens"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the number of pages a Chrome instance serves before
// it is replaced. Chrome memory grows with every page and does not return
// to its baseline even when pages are closed.
const DefaultMaxPages = 75

// BrowserManager owns a headless Chrome instance and hands out configured
// pages. Once MaxPages pages have been opened the browser is relaunched,
// but only when no page is in flight.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int // pages opened on the current browser
	inFlight int // pages not yet released
	closed   bool

	maxPages int
	bin      string
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser serves before it is replaced.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithBrowserBin uses the Chrome binary at path instead of looking one up
// or downloading it.
func WithBrowserBin(path string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.bin = path
	}
}

// NewBrowserManager launches Chrome. Close must be called when the manager
// is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}

	browser, l, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, l
	return bm, nil
}

// Page opens a blank page with the desktop user agent and viewport set.
// The returned release func closes the page and must be called on every
// path; calling it more than once is harmless.
func (bm *BrowserManager) Page() (*rod.Page, func(), error) {
	bm.mu.Lock()
	if bm.closed {
		bm.mu.Unlock()
		return nil, nil, sitelens.Errorf(sitelens.EINVALID, "browser is closed")
	}
	if bm.served >= bm.maxPages && bm.inFlight == 0 {
		bm.recycle()
	}
	browser := bm.browser
	bm.served++
	bm.inFlight++
	bm.mu.Unlock()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		bm.done()
		return nil, nil, fmt.Errorf("opening page: %w", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			_ = page.Close()
			bm.done()
		})
	}

	if err := configure(page); err != nil {
		release()
		return nil, nil, fmt.Errorf("configuring page: %w", err)
	}
	return page, release, nil
}

// configure presents the page as a desktop Chrome.
func configure(page *rod.Page) error {
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      UserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		return err
	}
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             ViewportWidth,
		Height:            ViewportHeight,
		DeviceScaleFactor: 1,
	})
}

func (bm *BrowserManager) done() {
	bm.mu.Lock()
	bm.inFlight--
	bm.mu.Unlock()
}

// Browser returns the current browser instance.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.browser
}

// Close shuts Chrome down. Pages still open are closed with it. Close is
// safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.closed {
		return nil
	}
	bm.closed = true

	err := shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = nil, nil
	return err
}

// launch starts Chrome with flags that keep background pages rendering and
// hide the automation banner.
func (bm *BrowserManager) launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", ViewportWidth, ViewportHeight)).
		Set("lang", "en-US").
		Leakless(true).
		Headless(true)
	if bm.bin != "" {
		l = l.Bin(bm.bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, l, nil
}

// recycle swaps in a fresh browser. When the relaunch fails the old
// browser keeps serving and the page count is left as is, so the next
// page retries. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	browser, l, err := bm.launch()
	if err != nil {
		return
	}
	_ = shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = browser, l
	bm.served = 0
}

func shutdown(browser *rod.Browser, l *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if l != nil {
		l.Kill()
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher. It exists
// for tests that verify the process is cleaned up.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
