// Package api serves synapse over HTTP: the public classifier route and the
// authenticated capture, entries, goals and taxonomy API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/synapse/internal/app"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server is the HTTP API server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration. The write
// timeout leaves room for a slow model call behind /classify and /capture.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// RouterConfig selects what the router mounts. Only Classifier is required;
// the gateway binary sets nothing else.
type RouterConfig struct {
	Classifier classifierDomain.Classifier
	// Container enables the authenticated /api/v1 routes.
	Container *app.Container
	// Tokens maps bearer tokens to user IDs.
	Tokens map[string]uuid.UUID
	// Health serves /readyz when set.
	Health *observability.HealthRegistry
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Metrics        observability.Metrics
	Logger         *slog.Logger
}

// NewRouter builds the chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	h := &handler{
		container:  cfg.Container,
		classifier: cfg.Classifier,
		logger:     cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestContext)
	r.Use(chimw.Recoverer)
	r.Use(permissiveCORS())
	r.Use(requestTiming(cfg.Metrics))

	r.Get("/health", h.handleHealth)
	r.Get("/healthz", h.handleHealth)
	if cfg.Health != nil {
		r.Method(http.MethodGet, "/readyz", cfg.Health.ReadyHandler())
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Post("/classify", h.classify)

	if cfg.Container != nil {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(authenticate(h, cfg.Tokens))

			r.Post("/capture", h.capture)

			r.Get("/entries", h.listEntries)
			r.Get("/entries/board", h.board)
			r.Get("/entries/{id}", h.getEntry)
			r.Patch("/entries/{id}", h.updateEntry)
			r.Delete("/entries/{id}", h.deleteEntry)
			r.Put("/entries/{id}/status", h.changeStatus)
			r.Post("/entries/{id}/toggle", h.toggleStatus)
			r.Get("/stats", h.stats)

			r.Get("/goals", h.listGoals)
			r.Post("/goals/{id}/progress", h.adjustGoal)
			r.Post("/goals/{id}/deactivate", h.deactivateGoal)
			r.Delete("/goals/{id}", h.deleteGoal)

			r.Get("/categories", h.listCategories)
			r.Post("/categories", h.createCategory)
			r.Get("/subjects", h.listSubjects)
			r.Post("/subjects", h.createSubject)
		})
	}
	return r
}

// NewServer creates a server for handler.
func NewServer(cfg ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// Addr returns the listening address.
func (s *Server) Addr() string { return s.server.Addr }

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handler carries what every route needs.
type handler struct {
	container  *app.Container
	classifier classifierDomain.Classifier
	logger     *slog.Logger
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}
