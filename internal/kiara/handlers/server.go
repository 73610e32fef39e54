package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the HTTP server serving the API.
type Server struct {
	httpServer   *http.Server
	logger       *zap.Logger
	httpEndpoint string
}

// NewServer constructs a Server listening on httpPort.
func NewServer(httpPort int, handler http.Handler, logger *zap.Logger) *Server {
	endpoint := fmt.Sprintf(":%d", httpPort)
	return &Server{
		httpServer: &http.Server{
			Addr:              endpoint,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:       logger,
		httpEndpoint: endpoint,
	}
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}
