package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/gloss/internal/config"
	"github.com/felixgeelhaar/gloss/internal/domain"
	"github.com/felixgeelhaar/gloss/internal/tutor"
)

// Server is the gloss daemon HTTP server. It owns the transport concerns
// only: decoding submissions, mapping domain errors to statuses, and the
// middleware chain. All analysis work happens in the tutor service.
type Server struct {
	cfg     *config.Config
	server  *http.Server
	router  *http.ServeMux
	tutor   tutor.TutorService
	metrics *metrics
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config *config.Config
	Tutor  tutor.TutorService
	// Events, when set, feeds the analysis metrics from lifecycle events
	Events *domain.EventDispatcher
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		cfg:     cfg.Config,
		router:  http.NewServeMux(),
		tutor:   cfg.Tutor,
		metrics: newMetrics(),
	}

	if cfg.Events != nil {
		cfg.Events.SubscribeAll(s.metrics.observeEvent)
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Config.Daemon.Bind, cfg.Config.Daemon.Port)
	handler := recoveryMiddleware(
		correlationIDMiddleware(
			loggingMiddleware(
				s.metrics.middleware(
					rateLimitMiddleware(DefaultRateLimitConfig())(s.router)))))
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // model calls are slow
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Analyses. Each call hits a model, so these carry the stricter bucket.
	expensive := expensiveRateLimitMiddleware(DefaultRateLimitConfig())
	s.router.Handle("POST /explain", expensive(http.HandlerFunc(s.handleExplain)))
	s.router.Handle("POST /fix", expensive(http.HandlerFunc(s.handleFix)))
	s.router.Handle("POST /practice", expensive(http.HandlerFunc(s.handlePractice)))

	// Health & introspection
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /v1/providers", s.handleListProviders)
	s.router.Handle("GET /metrics", s.metrics.handler())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting gloss daemon",
		"addr", s.server.Addr,
		"video_enabled", s.cfg.Video.Configured(),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped handler, for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Request decoding

// submissionRequest is the wire form of a code submission. Field names are
// part of the public contract and must not change.
type submissionRequest struct {
	Code     string             `json:"code"`
	Language string             `json:"language"`
	Level    string             `json:"user_level"`
	Options  *submissionOptions `json:"options"`
}

// submissionOptions are per-request flags. Pointers distinguish "absent"
// from "false" so defaults apply only when a flag was not sent.
type submissionOptions struct {
	SafeRun       *bool `json:"safe_run"`
	IncludeVideos *bool `json:"include_youtube"`
	MaxTokens     int   `json:"max_tokens"`
}

// decodeSubmission reads a submission from the request body. Defaults and
// clamping are applied here; validation stays with the domain.
func decodeSubmission(r *http.Request) (*domain.Submission, error) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}

	opts := domain.DefaultOptions()
	if req.Options != nil {
		if req.Options.SafeRun != nil {
			opts.SafeRun = *req.Options.SafeRun
		}
		if req.Options.IncludeVideos != nil {
			opts.IncludeVideos = *req.Options.IncludeVideos
		}
		opts.MaxTokens = req.Options.MaxTokens
	}

	sub := domain.NewSubmission(req.Code, req.Language, req.Level, opts)
	return &sub, nil
}

// Analysis handlers

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(r)
	if err != nil {
		s.jsonDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.tutor.Explain(r.Context(), sub)
	if err != nil {
		s.analysisError(w, r, domain.ActionExplain, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(r)
	if err != nil {
		s.jsonDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.tutor.Fix(r.Context(), sub)
	if err != nil {
		s.analysisError(w, r, domain.ActionFix, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(r)
	if err != nil {
		s.jsonDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.tutor.Practice(r.Context(), sub)
	if err != nil {
		s.analysisError(w, r, domain.ActionPractice, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// analysisError maps a tutor error onto the wire. Validation errors are
// user-correctable and surfaced verbatim; everything else is opaque to the
// caller and logged server-side with the correlation ID.
func (s *Server) analysisError(w http.ResponseWriter, r *http.Request, action domain.Action, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptySubmission),
		errors.Is(err, domain.ErrUnsupportedLanguage),
		errors.Is(err, domain.ErrUnknownSkillLevel):
		s.jsonDetail(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, context.Canceled):
		// Client went away; there is nobody left to answer.
		slog.Debug("request cancelled by client",
			"correlation_id", GetCorrelationID(r.Context()),
			"action", action,
		)

	default:
		slog.Error("analysis failed",
			"correlation_id", GetCorrelationID(r.Context()),
			"action", action,
			"error", err,
		)
		s.jsonDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// Health & introspection handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	providers := make([]map[string]any, 0)
	for name, cfg := range s.cfg.LLM.Providers {
		providers = append(providers, map[string]any{
			"name":       name,
			"enabled":    cfg.Enabled,
			"model":      cfg.Model,
			"configured": cfg.APIKey != "" || name == "ollama",
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"default":   s.cfg.LLM.DefaultProvider,
		"providers": providers,
		"video":     s.cfg.Video.Configured(),
	})
}

// Helper methods

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// jsonDetail writes the error body shape shared by every endpoint
func (s *Server) jsonDetail(w http.ResponseWriter, status int, detail string) {
	s.jsonResponse(w, status, map[string]string{"detail": detail})
}
