package ingestion

import (
	"context"

	"github.com/jonathan/ats-assistant/internal/fetch"
)

// JobDescriptionFromURL fetches a job posting and returns its cleaned text.
func JobDescriptionFromURL(ctx context.Context, f *fetch.Fetcher, url string) (*Document, error) {
	page, err := f.JobPosting(ctx, url)
	if err != nil {
		return nil, err
	}

	text := CleanText(page.Text)
	meta := NewMetadata(text, url)
	meta.Platform = string(page.Platform)
	meta.Format = FormatText
	return &Document{Text: text, Metadata: meta}, nil
}
