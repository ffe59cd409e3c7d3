// Package apiserver implements the HTTP surface (§6): POST /invocations
// and the GET /health, /status, /ping probes, fronting a single
// pipeline.Pipeline with a raw net/http router and small middleware.
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/pipeline"
)

const (
	serviceName = "rca-engine"
	version     = "0.1.0"
)

// Server handles the investigation HTTP API.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	router   *http.ServeMux
	server   *http.Server
	logger   *logging.Logger
	sem      chan struct{}
	started  time.Time
}

// New builds a Server fronting p with the routes and concurrency cap
// described in cfg. Call Start to begin listening.
func New(cfg *config.Config, p *pipeline.Pipeline) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: p,
		router:   http.NewServeMux(),
		logger:   logging.Get("apiserver"),
		sem:      make(chan struct{}, cfg.MaxConcurrentInvestigations),
	}

	s.registerRoutes()
	s.configureHTTPServer()

	return s
}

// configureHTTPServer wires the CORS middleware and sets generous
// timeouts since an investigation can legitimately run for the whole of
// InvestigationDeadlineSeconds.
func (s *Server) configureHTTPServer() {
	deadline := time.Duration(s.cfg.InvestigationDeadlineSeconds+30) * time.Second
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.APIPort),
		Handler:      s.requestIDMiddleware(s.corsMiddleware(s.router)),
		ReadTimeout:  deadline,
		WriteTimeout: deadline,
		IdleTimeout:  60 * time.Second,
	}
}

// Start begins listening in the background. Matches the lifecycle
// Start/Stop/Name shape used elsewhere in this process's main command.
func (s *Server) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.started = time.Now()
	s.logger.Info("starting API server", logging.F("port", s.cfg.APIPort))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", logging.F("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully shuts the HTTP server down, waiting at most 5 seconds
// for in-flight responses to finish writing.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping API server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", logging.F("error", err.Error()))
		return err
	}
	return nil
}

func (s *Server) Name() string { return "apiserver" }

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string { return s.server.Addr }
