package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goapi-io/goapi-idx/pkg/config"
	"github.com/goapi-io/goapi-idx/pkg/logger"
)

// Server is the read-only IDX gateway
// ⭐ SSOT: 게이트웨이 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// New creates a gateway server listening on cfg.Port. WriteTimeout leaves
// room for one upstream call at the configured GoAPI timeout.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      cfg.GoAPI.Timeout + 5*time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: log.WithField("component", "gateway"),
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving requests until Shutdown
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting IDX gateway")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down IDX gateway")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown gateway: %w", err)
	}

	return nil
}
