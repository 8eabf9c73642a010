package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"
)

// MinContentLength is the minimum extracted text length to consider HTTP fetch successful.
// Shorter text usually means a JavaScript-rendered page.
const MinContentLength = 500

// DefaultBrowserTimeout bounds a headless render.
const DefaultBrowserTimeout = 30 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the fully rendered HTML of a page.
type Renderer func(ctx context.Context, url string) (string, error)

// ChromeRenderer renders pages in headless Chrome. Chrome or Chromium must
// be installed.
func ChromeRenderer(timeout time.Duration) Renderer {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	return func(ctx context.Context, url string) (string, error) {
		allocCtx, cancel := chromedp.NewExecAllocator(ctx,
			append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)...,
		)
		defer cancel()

		browserCtx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
		defer cancel()

		var html string
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body"),
			chromedp.Sleep(3*time.Second),
			chromedp.ActionFunc(func(ctx context.Context) error {
				// Cookie banners; absence is fine
				_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
				return nil
			}),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return "", errors.Wrap(err, "browser rendering failed")
		}
		return html, nil
	}
}
