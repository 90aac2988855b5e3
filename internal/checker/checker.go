package checker

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// UserAgent is sent by both check modes so the site serves its desktop variant
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultNavigationTimeout = 30 * time.Second
	DefaultSettleDelay       = 2 * time.Second
)

// Checker reports whether the target page is currently reachable
type Checker interface {
	Check(ctx context.Context) (available bool, err error)
}

// Browser is one isolated browser session
type Browser interface {
	// Navigate loads url and returns once the page has loaded
	Navigate(ctx context.Context, url string) error
	// Location returns the address the page ended up on
	Location(ctx context.Context) (string, error)
	// Close terminates the session and releases its processes
	Close() error
}

// Launcher starts a new browser session
type Launcher func(ctx context.Context) (Browser, error)

// BrowserChecker checks reachability by loading the page in a fresh browser per check
type BrowserChecker struct {
	launch            Launcher
	url               string
	marker            string
	navigationTimeout time.Duration
	settleDelay       time.Duration
}

// Option configures a BrowserChecker
type Option func(*BrowserChecker)

// WithNavigationTimeout bounds the page load
func WithNavigationTimeout(d time.Duration) Option {
	return func(c *BrowserChecker) { c.navigationTimeout = d }
}

// WithSettleDelay sets how long to wait after load for delayed redirects
func WithSettleDelay(d time.Duration) Option {
	return func(c *BrowserChecker) { c.settleDelay = d }
}

// NewBrowserChecker creates a checker that loads url and looks for marker in the final address
func NewBrowserChecker(launch Launcher, url, marker string, opts ...Option) *BrowserChecker {
	c := &BrowserChecker{
		launch:            launch,
		url:               url,
		marker:            marker,
		navigationTimeout: DefaultNavigationTimeout,
		settleDelay:       DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check launches a browser, loads the page, waits for redirects to settle and
// classifies the final address. The browser is closed on every return path.
func (c *BrowserChecker) Check(ctx context.Context) (available bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			available = false
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()

	browser, err := c.launch(ctx)
	if err != nil {
		return false, fmt.Errorf("launching browser: %w", err)
	}
	defer browser.Close() // nolint:errcheck

	navCtx, cancel := context.WithTimeout(ctx, c.navigationTimeout)
	defer cancel()

	if err := browser.Navigate(navCtx, c.url); err != nil {
		return false, fmt.Errorf("navigating to %s: %w", c.url, err)
	}

	if err := sleep(ctx, c.settleDelay); err != nil {
		return false, fmt.Errorf("waiting for redirects: %w", err)
	}

	final, err := browser.Location(ctx)
	if err != nil {
		return false, fmt.Errorf("reading final location: %w", err)
	}

	return Classify(final, c.marker), nil
}

// Classify reports whether finalURL is the real page rather than the blocked one
func Classify(finalURL, marker string) bool {
	return !strings.Contains(finalURL, marker)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
