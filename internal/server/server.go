// Package server provides the HTTP API for PeppeGPT.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/pepperumo/peppegpt/internal/chat"
	"github.com/pepperumo/peppegpt/internal/config"
	"github.com/pepperumo/peppegpt/internal/retrieval"
	"github.com/pepperumo/peppegpt/internal/session"
)

// Server is the HTTP server for the PeppeGPT API.
type Server struct {
	chat     *chat.Service
	engine   *retrieval.Engine
	sessions *session.Store // nil when session logging is disabled
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. sessions may be nil.
func NewServer(
	chatSvc *chat.Service,
	engine *retrieval.Engine,
	sessions *session.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:     chatSvc,
		engine:   engine,
		sessions: sessions,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler)
	if s.config.RateLimit.Enabled {
		limiter := NewRateLimiter(s.config.RateLimit.Requests, s.config.RateLimit.Window(), s.logger)
		r.Use(limiter.Middleware)
	}

	r.Post("/api/v1/chat", s.handleChat)
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/content", s.handleContent)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/config", s.handleConfig)
	r.Get("/", s.handleRoot)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
