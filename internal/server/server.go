// Package server provides the HTTP REST API for the applicant-tracking assistant.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/ats-assistant/internal/assistant"
	"github.com/jonathan/ats-assistant/internal/config"
	"github.com/jonathan/ats-assistant/internal/fetch"
	"github.com/jonathan/ats-assistant/internal/ingestion"
	"github.com/jonathan/ats-assistant/internal/logging"
	"github.com/jonathan/ats-assistant/internal/server/middleware"
	"github.com/jonathan/ats-assistant/internal/server/ratelimit"
	"github.com/jonathan/ats-assistant/internal/storage"
	"github.com/jonathan/ats-assistant/internal/types"
)

var (
	staffRoles = []types.Role{types.RoleAdmin, types.RoleRecruiter, types.RoleManager}
	adminRoles = []types.Role{types.RoleAdmin}
	candRoles  = []types.Role{types.RoleCandidate}
)

// Options wires the server's collaborators. Assistant and JWT are required;
// Store, Blobs and Fetcher are optional.
type Options struct {
	Config    config.ServerConfig
	Assistant *assistant.Assistant
	JWT       *JWTService
	Store     Store
	Blobs     storage.BlobStore
	Documents *ingestion.Extractor
	Fetcher   *fetch.Fetcher
	Limiter   *ratelimit.Limiter
	Logger    *zap.SugaredLogger
}

// Server represents the HTTP server
type Server struct {
	cfg         config.ServerConfig
	assistant   *assistant.Assistant
	jwtService  *JWTService
	store       Store
	blobs       storage.BlobStore
	documents   *ingestion.Extractor
	fetcher     *fetch.Fetcher
	rateLimiter *ratelimit.Limiter
	models      *semaphore.Weighted
	logger      *zap.SugaredLogger
	handler     http.Handler
	httpServer  *http.Server
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Assistant == nil {
		return nil, errors.New("server: assistant is required")
	}
	if opts.JWT == nil {
		return nil, errors.New("server: JWT service is required")
	}

	cfg := opts.Config
	if cfg.MaxConcurrentModelCalls <= 0 {
		cfg.MaxConcurrentModelCalls = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	s := &Server{
		cfg:         cfg,
		assistant:   opts.Assistant,
		jwtService:  opts.JWT,
		store:       opts.Store,
		blobs:       opts.Blobs,
		documents:   opts.Documents,
		fetcher:     opts.Fetcher,
		rateLimiter: opts.Limiter,
		models:      semaphore.NewWeighted(int64(cfg.MaxConcurrentModelCalls)),
		logger:      logging.OrNop(opts.Logger),
	}
	if s.documents == nil {
		s.documents = ingestion.NewExtractor()
	}
	if s.fetcher == nil {
		s.fetcher = fetch.NewFetcher(fetch.WithLogger(s.logger))
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // evaluations retry up to three model calls
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	// Stateless AI endpoints
	mux.Handle("POST /documents/extract", s.staff(s.handleExtractDocument))
	mux.Handle("POST /ai/jobs/parse", s.staff(s.handleParseJob))
	mux.Handle("POST /ai/resumes/parse", s.staff(s.handleParseResume))
	mux.Handle("POST /ai/evaluations", s.staff(s.handleEvaluate))
	mux.Handle("POST /ai/outreach", s.staff(s.handleOutreach))
	mux.Handle("POST /ai/screenings", s.staff(s.handleScreening))

	// Recruiter pipeline
	mux.Handle("POST /jobs", s.staff(s.withStore(s.handleCreateJob)))
	mux.Handle("GET /jobs", s.staff(s.withStore(s.handleListJobs)))
	mux.Handle("GET /jobs/{id}", s.staff(s.withStore(s.handleGetJob)))
	mux.Handle("GET /jobs/{id}/applications", s.staff(s.withStore(s.handleListJobApplications)))
	mux.Handle("POST /jobs/{id}/applications", s.staff(s.withStore(s.handleUploadApplication)))
	mux.Handle("GET /jobs/{id}/export.xlsx", s.staff(s.withStore(s.handleExportJob)))
	mux.Handle("GET /applications/{id}", s.staff(s.withStore(s.handleGetApplication)))
	mux.Handle("POST /applications/{id}/evaluate", s.staff(s.withStore(s.handleEvaluateApplication)))
	mux.Handle("PUT /applications/{id}/stage", s.staff(s.withStore(s.handleUpdateStage)))
	mux.Handle("POST /applications/{id}/screening", s.staff(s.withStore(s.handleScreenApplication)))
	mux.Handle("POST /applications/{id}/outreach", s.staff(s.withStore(s.handleApplicationOutreach)))
	mux.Handle("GET /applications/{id}/notes", s.staff(s.withStore(s.handleListNotes)))
	mux.Handle("POST /applications/{id}/notes", s.staff(s.withStore(s.handleAddNote)))
	mux.Handle("GET /dashboard", s.staff(s.withStore(s.handleDashboard)))

	// Admin
	mux.Handle("GET /admin/users", s.restricted(adminRoles, s.withStore(s.handleListUsers)))
	mux.Handle("PUT /admin/users/{id}/role", s.restricted(adminRoles, s.withStore(s.handleUpdateRole)))
	mux.Handle("GET /admin/audit-log", s.restricted(adminRoles, s.withStore(s.handleAuditLog)))

	// Candidate portal
	mux.Handle("GET /me/profile", s.restricted(candRoles, s.withStore(s.handleGetMyProfile)))
	mux.Handle("POST /me/profile", s.restricted(candRoles, s.withStore(s.handleUploadMyProfile)))
	mux.Handle("POST /me/applications", s.restricted(candRoles, s.withStore(s.handleApply)))
	mux.Handle("GET /me/applications", s.restricted(candRoles, s.withStore(s.handleListMyApplications)))
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	s.rateLimiter.Stop()
	s.logger.Info("Server stopped")
	return nil
}

// auth wraps h with token validation. With a store, the role comes from
// the stored profile.
func (s *Server) auth(h http.Handler) http.Handler {
	var resolve middleware.RoleResolver
	if s.store != nil {
		resolve = s.store.GetUserRole
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), resolve)(h)
}

func (s *Server) restricted(roles []types.Role, h http.HandlerFunc) http.Handler {
	return s.auth(middleware.RequireRole(roles...)(h))
}

func (s *Server) staff(h http.HandlerFunc) http.Handler {
	return s.restricted(staffRoles, h)
}

// withStore answers 503 when no database is configured.
func (s *Server) withStore(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			s.writeError(w, r, errNoStore)
			return
		}
		h(w, r)
	}
}

// withModel runs fn while holding one of the model call slots.
func withModel[T any](s *Server, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := s.models.Acquire(ctx, 1); err != nil {
		return zero, errors.Wrap(err, "waiting for a model slot")
	}
	defer s.models.Release(1)
	return fn(ctx)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging writes one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Infow("HTTP request",
			logging.FieldMethod, r.Method,
			logging.FieldPath, r.URL.Path,
			logging.FieldStatus, rec.status,
			logging.FieldDurationMS, time.Since(start).Milliseconds())
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "database": "disabled"}
	if s.store != nil {
		resp["database"] = "ok"
		if err := s.store.Ping(r.Context()); err != nil {
			resp["database"] = "unreachable"
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warnw("Error encoding JSON response", logging.FieldError, err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("Request failed",
			logging.FieldMethod, r.Method,
			logging.FieldPath, r.URL.Path,
			logging.FieldStatus, status,
			logging.FieldError, err)
	}
	s.jsonResponse(w, status, errorBody(err, status))
}

// extractClientID uses the IP address from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.logger.Warnw("Rate limit exceeded",
		logging.FieldPath, r.URL.Path,
		"client", extractClientID(r),
		"limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
