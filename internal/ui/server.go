package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/internal/scanner"
	"github.com/opencatalog/repo-scanner/pkg/db"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

// Server exposes the observability and catalog query surface.
type Server struct {
	Logger log.Logger
	Config *cfg.Config
	server *http.Server
	port   int
}

// NewServer creates a new HTTP server for the scanner service.
func NewServer(logger log.Logger, config *cfg.Config, mysql *db.Mysql, scn *scanner.Scanner, sched *scanner.Scheduler, port int) (*Server, error) {
	handler, err := NewHandler(logger, config, mysql, scn, sched)
	if err != nil {
		return nil, fmt.Errorf("failed to create handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	return &Server{
		Logger: logger,
		Config: config,
		port:   port,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.Logger.Info(context.Background(), "Starting catalog server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down catalog server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
