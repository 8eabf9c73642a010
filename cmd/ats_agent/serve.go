package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-assistant/internal/assistant"
	"github.com/jonathan/ats-assistant/internal/ingestion"
	"github.com/jonathan/ats-assistant/internal/llm"
	"github.com/jonathan/ats-assistant/internal/server"
	"github.com/jonathan/ats-assistant/internal/server/ratelimit"
	"github.com/jonathan/ats-assistant/internal/storage"
)

var (
	servePort    int
	serveBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the recruiting tasks. Without a database URL only the
stateless AI endpoints are served; without a bucket résumé files are not kept.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveBrowser, "browser", false, "Render thin job pages in headless Chrome")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if err := a.cfg.Auth.RequireSecret(); err != nil {
		return err
	}
	if servePort > 0 {
		a.cfg.Server.Port = servePort
	}

	ctx := context.Background()

	// A missing model leaves the AI endpoints answering 503.
	var client llm.Client
	if c, err := llm.NewClient(ctx, a.cfg.LLMClientConfig()); err != nil {
		a.logger.Warnw("LLM client unavailable; AI endpoints will return 503", "error", err)
	} else {
		client = c
		defer func() { _ = client.Close() }()
	}

	opts := server.Options{
		Config:    a.cfg.Server,
		Assistant: assistant.New(client, assistantOptions(a.cfg, a.logger)),
		JWT:       server.NewJWTService(a.cfg.Auth),
		Documents: ingestion.NewExtractor(),
		Fetcher:   a.fetcher(serveBrowser),
		Limiter:   ratelimit.NewLimiter(ratelimit.FromConfig(a.cfg.RateLimit)),
		Logger:    a.logger,
	}
	defer opts.Limiter.Stop()

	if a.cfg.Database.URL != "" {
		database, err := a.database(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to connect to database")
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return errors.Wrap(err, "failed to apply schema")
		}
		opts.Store = database
	} else {
		a.logger.Warn("No database configured; job, application and portal routes will return 503")
	}

	if a.cfg.Storage.Enabled() {
		blobs, err := storage.New(ctx, a.cfg.Storage)
		if err != nil {
			return errors.Wrap(err, "failed to create storage client")
		}
		opts.Blobs = blobs
	}

	srv, err := server.New(opts)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}
	return srv.Start()
}
