package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ucu/innovators-hub/internal/pkg/logger"
	"github.com/ucu/innovators-hub/internal/server"
)

// @title UCU Innovators Hub API
// @version 1.0
// @description Project gallery, moderation and analytics API for university student innovations

// @host localhost:5000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
