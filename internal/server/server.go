// Package server provides the HTTP API for Tana.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/tana/internal/config"
	"github.com/hyperjump/tana/internal/explore"
	"github.com/hyperjump/tana/internal/index"
	"github.com/hyperjump/tana/internal/storage"
)

// Server is the HTTP server for the Tana API.
type Server struct {
	explore *explore.Service
	storage storage.Storage
	index   index.ItemIndex
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	exploreSvc *explore.Service,
	store storage.Storage,
	idx index.ItemIndex,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		explore: exploreSvc,
		storage: store,
		index:   idx,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the API router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/explore", s.handleExplore)
	r.Get("/api/items", s.handleListItems)
	r.Post("/api/items", s.handleCreateItem)
	r.Get("/api/items/{id}", s.handleGetItem)
	r.Put("/api/items/{id}", s.handleUpdateItem)
	r.Delete("/api/items/{id}", s.handleDeleteItem)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/export", s.handleExport)
	r.Get("/api/status", s.handleStatus)
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
