// Package server provides the HTTP API for Pasal.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/internal/ingest"
	"github.com/mnakhyar/pasal/internal/search"
	"github.com/mnakhyar/pasal/internal/storage"
)

// Server is the HTTP server for the Pasal API.
type Server struct {
	engine   *search.Engine
	ingestor *ingest.Ingestor
	storage  storage.Storage
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. The ingestor may
// be nil when the server runs read-only.
func NewServer(
	engine *search.Engine,
	ingestor *ingest.Ingestor,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:   engine,
		ingestor: ingestor,
		storage:  store,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/regulations", s.handleIngestRegulation)
	r.Delete("/api/v1/works/{id}", s.handleDeleteWork)
	r.Get("/api/v1/works/{id}", s.handleGetWork)
	r.Get("/api/v1/works/{id}/nodes", s.handleWorkNodes)
	r.Get("/api/v1/regulation-types", s.handleRegulationTypes)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
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
