package extract

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserExtractor renders URLs in headless Chromium so script-built pages
// yield their final text. Text and HTML sources are handed to fallback.
type BrowserExtractor struct {
	mu       sync.Mutex
	pw       *playwright.Playwright
	browser  playwright.Browser
	timeout  time.Duration
	fallback Extractor
}

// NewBrowserExtractor installs and starts Playwright.
func NewBrowserExtractor(timeout time.Duration, fallback Extractor) (*BrowserExtractor, error) {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return &BrowserExtractor{
		pw:       pw,
		browser:  browser,
		timeout:  timeout,
		fallback: fallback,
	}, nil
}

func (e *BrowserExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if src.Text != "" || src.HTML != "" || src.URL == "" {
		return e.fallback.Extract(ctx, src)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	page, err := e.browser.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	waitUntil := playwright.WaitUntilState("domcontentloaded")
	if _, err := page.Goto(src.URL, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   playwright.Float(float64(e.timeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	element, err := page.QuerySelector(MainSelector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		element, err = page.QuerySelector("body")
		if err != nil {
			return "", fmt.Errorf("body query failed: %w", err)
		}
		if element == nil {
			return "", ErrNoContent
		}
	}
	content, err := element.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrNoContent
	}
	return content, nil
}

// Close shuts the browser and the Playwright driver down.
func (e *BrowserExtractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.browser.Close(); err != nil {
		return err
	}
	return e.pw.Stop()
}
