// Package main implements the entry point for the PlateSnap API server,
// which accepts food photo uploads and exposes their asynchronous
// calorie-analysis results.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/platesnap/platesnap-api/internal/config"
	"github.com/platesnap/platesnap-api/internal/platform/logger"
	"github.com/platesnap/platesnap-api/internal/platform/redisstore"
)

// main is the entry point for the platesnap API server.
// It initializes configuration, sets up logging, establishes the Redis
// connection, injects dependencies, and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	os.Exit(0)
}

// run loads configuration, wires the application, and blocks until the
// server exits.
func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"redis_addr", cfg.Redis.Addr)

	redisClient, err := redisstore.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	app, err := newApplication(cfg, appLogger, redisClient)
	if err != nil {
		// The application owns the client only after construction succeeds.
		if closeErr := redisClient.Close(); closeErr != nil {
			appLogger.Error("Error closing Redis connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
