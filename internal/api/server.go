package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/cinematheque/internal/api/handlers"
	"github.com/amaumene/cinematheque/internal/api/middleware"
	"github.com/amaumene/cinematheque/internal/config"
	"github.com/amaumene/cinematheque/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Server represents the local status HTTP server
type Server struct {
	server  *http.Server
	store   handlers.CollectionSource
	session handlers.SessionSource
	metrics *telemetry.Metrics
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, store handlers.CollectionSource, session handlers.SessionSource,
	metrics *telemetry.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		store:   store,
		session: session,
		metrics: metrics,
		logger:  logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, including middleware
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.session, s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.store, s.session, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
