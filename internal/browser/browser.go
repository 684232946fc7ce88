// Package browser owns the chromedp session behind the page capabilities the
// core consumes: navigate, current URL/title, and in-page script execution.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession starts a browser and returns a ready session. Close must be
// called when done.
func NewSession(ctx context.Context, headless, debug bool) (*Session, error) {
	execPath, err := findChrome()
	if err != nil {
		return nil, err
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(execPath),
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.DisableGPU,
	}

	if headless && !debug {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	opts = append(opts,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(DefaultUserAgent),
		chromedp.WindowSize(1280, 800),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("exclude-switches", "enable-automation,enable-logging"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	var contextOpts []chromedp.ContextOption
	if debug {
		contextOpts = append(contextOpts,
			chromedp.WithLogf(func(s string, i ...interface{}) { slog.Debug(fmt.Sprintf(s, i...)) }),
		)
	}

	taskCtx, taskCancel := chromedp.NewContext(allocCtx, contextOpts...)

	combinedCancel := func() {
		taskCancel()
		allocCancel()
	}

	// Start the browser and hide the automation marker; some login pages
	// refuse to render their form for webdriver sessions.
	err = chromedp.Run(taskCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			script := `
				Object.defineProperty(window, "navigator", {
					value: new Proxy(navigator, {
						has: (target, key) => (key === "webdriver" ? false : key in target),
						get: (target, key) =>
						key === "webdriver"
							? false
							: typeof target[key] === "function"
							? target[key].bind(target)
							: target[key],
					}),
				});
			`
			_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
			return err
		}),
	)
	if err != nil {
		combinedCancel()
		return nil, fmt.Errorf("browser failed to start: %w", err)
	}

	return &Session{ctx: taskCtx, cancel: combinedCancel}, nil
}

func findChrome() (string, error) {
	for _, bin := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(bin); err == nil {
			slog.Debug("using system chromium", "path", path)
			return path, nil
		}
	}
	return "", fmt.Errorf("no chromium or chrome binary found in PATH")
}

// Navigate loads url and waits until the document body is ready, so scans
// that run afterwards see actual content.
func (s *Session) Navigate(url string) error {
	return chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Location returns the current page URL.
func (s *Session) Location() (string, error) {
	var loc string
	err := chromedp.Run(s.ctx, chromedp.Location(&loc))
	return loc, err
}

// Title returns the current page title.
func (s *Session) Title() (string, error) {
	var title string
	err := chromedp.Run(s.ctx, chromedp.Title(&title))
	return title, err
}

// Evaluate runs a script in the current page and decodes its result into
// out; a nil out discards the result. This satisfies the scanner's Executor
// capability.
func (s *Session) Evaluate(ctx context.Context, expression string, out any) error {
	runCtx := s.ctx
	if ctx != nil {
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithDeadline(s.ctx, deadline)
			defer cancel()
		}
	}
	return chromedp.Run(runCtx, chromedp.Evaluate(expression, out))
}

func (s *Session) Close() {
	s.cancel()
}
