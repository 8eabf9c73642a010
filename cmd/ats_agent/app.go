package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jonathan/ats-assistant/internal/assistant"
	"github.com/jonathan/ats-assistant/internal/config"
	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/evaluation"
	"github.com/jonathan/ats-assistant/internal/extraction"
	"github.com/jonathan/ats-assistant/internal/fetch"
	"github.com/jonathan/ats-assistant/internal/ingestion"
	"github.com/jonathan/ats-assistant/internal/llm"
	"github.com/jonathan/ats-assistant/internal/logging"
	"github.com/jonathan/ats-assistant/internal/observability"
)

// app holds what every command needs: configuration and a logger.
type app struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Verbose: verbose, JSON: jsonLogs})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// assistantOptions maps configuration onto the extraction and evaluation options.
func assistantOptions(cfg *config.Config, logger *zap.SugaredLogger) assistant.Options {
	return assistant.Options{
		Extraction: []extraction.Option{
			extraction.WithPolicy(extraction.RetryPolicy{
				MaxAttempts: cfg.LLM.MaxAttempts,
				Backoff:     cfg.LLM.RetryBackoff,
				Retryable:   extraction.IsRetryable,
			}),
			extraction.WithTimeout(cfg.LLM.RequestTimeout),
		},
		Evaluation: []evaluation.Option{
			evaluation.WithRedaction(cfg.Pipeline.RedactPII),
			evaluation.WithResumePrefix(cfg.Pipeline.ResumePrefixChars),
		},
		CompanyName: cfg.Pipeline.DefaultCompanyName,
		Logger:      logger,
	}
}

// assistant connects to the configured model. The caller closes the client.
func (a *app) assistant(ctx context.Context) (*assistant.Assistant, llm.Client, error) {
	client, err := llm.NewClient(ctx, a.cfg.LLMClientConfig())
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create LLM client")
	}
	return assistant.New(client, assistantOptions(a.cfg, a.logger)), client, nil
}

// database connects to Postgres; a URL is required.
func (a *app) database(ctx context.Context) (*db.DB, error) {
	if a.cfg.Database.URL == "" {
		return nil, errors.New("database URL is required (ATS_DATABASE_URL or DATABASE_URL)")
	}
	return db.Connect(ctx, a.cfg.Database.URL)
}

// fetcher builds a job posting fetcher, with the browser fallback when
// enabled by flag or configuration.
func (a *app) fetcher(browser bool) *fetch.Fetcher {
	opts := []fetch.FetcherOption{fetch.WithLogger(a.logger)}
	if browser || a.cfg.Pipeline.UseBrowser {
		opts = append(opts, fetch.WithRenderer(fetch.ChromeRenderer(0)))
	}
	return fetch.NewFetcher(opts...)
}

// printer writes human-readable summaries to stderr in verbose mode and
// discards them otherwise.
func (a *app) printer() *observability.Printer {
	if !verbose {
		return observability.NewPrinter(io.Discard)
	}
	return observability.NewPrinter(os.Stderr)
}

// readDocument extracts the text of a PDF, DOCX or plain text file.
func readDocument(path string) (*ingestion.Document, error) {
	if path == "" {
		return nil, errors.New("--in is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input file")
	}
	return ingestion.NewExtractor().Extract(data, filepath.Base(path))
}

// readJSON decodes a JSON file into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}
	return nil
}
