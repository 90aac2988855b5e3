package checker

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/titulos-monitor/titulos-monitor/internal/logger"
)

// chromeBrowser is a Browser backed by a dedicated headless Chrome process
type chromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// ChromeLauncher returns a Launcher that starts headless Chrome through chromedp.
// When the default executable fails to start and fallbackPath is set, the launch is
// retried once with that binary.
func ChromeLauncher(fallbackPath string) Launcher {
	return func(ctx context.Context) (Browser, error) {
		browser, err := startChrome(ctx, "")
		if err == nil {
			return browser, nil
		}
		if fallbackPath == "" {
			return nil, err
		}

		logger.Warn("Default Chrome failed to start, trying fallback executable", logger.Fields{
			"path": fallbackPath,
		})
		browser, fallbackErr := startChrome(ctx, fallbackPath)
		if fallbackErr != nil {
			return nil, errors.Join(err, fallbackErr)
		}
		return browser, nil
	}
}

func chromeOptions(execPath string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-accelerated-2d-canvas", true),
		chromedp.DisableGPU,
		chromedp.UserAgent(UserAgent),
	)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	return opts
}

func startChrome(ctx context.Context, execPath string) (*chromeBrowser, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromeOptions(execPath)...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Running with no actions starts the browser and opens the first tab
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		if execPath != "" {
			return nil, fmt.Errorf("starting chrome at %s: %w", execPath, err)
		}
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &chromeBrowser{
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

func (b *chromeBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *chromeBrowser) Location(ctx context.Context) (string, error) {
	var location string
	if err := b.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Close shuts the browser down gracefully, then kills whatever is left of the process
func (b *chromeBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// run executes actions in the browser tab while honoring ctx's deadline.
// Actions must run on a context derived from the tab, so ctx is bridged in.
func (b *chromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}
