package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/ats-assistant/internal/logging"
)

// Page is the text of a fetched job posting.
type Page struct {
	URL          string   `json:"url"`
	Platform     Platform `json:"platform"`
	Text         string   `json:"text"`
	UsedBrowser  bool     `json:"used_browser"`
	HTTPTextSize int      `json:"http_text_size"`
}

// Fetcher retrieves job postings, optionally re-rendering thin pages in a browser.
type Fetcher struct {
	opts     *Options
	renderer Renderer
	logger   *zap.SugaredLogger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithOptions sets the HTTP options.
func WithOptions(o *Options) FetcherOption {
	return func(f *Fetcher) { f.opts = o }
}

// WithRenderer enables the browser fallback using r.
func WithRenderer(r Renderer) FetcherOption {
	return func(f *Fetcher) { f.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher. Without WithRenderer there is no browser fallback.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrNop(f.logger)
	return f
}

// JobPosting fetches urlStr and extracts the posting text using selectors
// for the detected job board. When the text is too short and a renderer is
// configured, the page is rendered in a browser and extracted again; a
// failed render keeps the HTTP text.
func (f *Fetcher) JobPosting(ctx context.Context, urlStr string) (*Page, error) {
	platform := DetectPlatform(urlStr)

	result, err := URL(ctx, urlStr, f.opts)
	if err != nil {
		return nil, err
	}

	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	text, err := ExtractMainText(result.HTML, content, noise...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}

	page := &Page{URL: urlStr, Platform: platform, Text: text, HTTPTextSize: len(text)}
	f.logger.Debugw("Fetched job posting", "url", urlStr, "platform", platform, "chars", len(text))

	if f.renderer == nil || !ShouldUseBrowser(text) {
		return page, nil
	}

	f.logger.Infow("Posting text is short, rendering in browser", "url", urlStr, "chars", len(text))
	html, err := f.renderer(ctx, urlStr)
	if err != nil {
		f.logger.Warnw("Browser rendering failed, keeping HTTP text", "url", urlStr, logging.FieldError, err)
		return page, nil
	}

	rendered, err := ExtractMainText(html, content, noise...)
	if err != nil || len(rendered) <= len(text) {
		return page, nil
	}
	page.Text = rendered
	page.UsedBrowser = true
	return page, nil
}
