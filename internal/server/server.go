// Package server runs the Innovators Hub HTTP API process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ucu/innovators-hub/internal/bootstrap"
	"github.com/ucu/innovators-hub/internal/config"
	"github.com/ucu/innovators-hub/internal/pkg/helpers"
)

const (
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server owns the HTTP listener and every resource opened at startup
type Server struct {
	config   *config.Config
	database *bootstrap.Database
	deps     *bootstrap.Dependencies
	logger   zerolog.Logger
	http     *http.Server
}

// NewServer loads configuration, opens the store, seeds it and builds the router
func NewServer(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, database.Repos, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}
	bootstrap.SeedDefaultData(ctx, cfg, deps)

	return &Server{
		config:   cfg,
		database: database,
		deps:     deps,
		logger:   lgr,
		http: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      bootstrap.SetupRouter(cfg, deps, lgr),
			ReadTimeout:  helpers.ParseDuration(cfg.Server.ReadTimeout, 10*time.Second),
			WriteTimeout: helpers.ParseDuration(cfg.Server.WriteTimeout, 30*time.Second),
			IdleTimeout:  idleTimeout,
		},
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Str("mode", s.config.Server.Mode).Msg("HTTP server listening")
		listenErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeResources()
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested")
	}

	return s.Shutdown(context.Background())
}

// Shutdown drains in-flight requests and closes resources
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		shutdownErr = fmt.Errorf("server shutdown completed with errors: %w", err)
	}

	s.closeResources()
	s.logger.Info().Msg("Server stopped")
	return shutdownErr
}

func (s *Server) closeResources() {
	if s.deps != nil {
		s.deps.Close()
	}
	if s.database != nil {
		s.database.Close()
	}
}
