package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platesnap/platesnap-api/internal/config"
	"github.com/platesnap/platesnap-api/internal/platform/redisstore"
	"github.com/platesnap/platesnap-api/internal/service"
	"github.com/platesnap/platesnap-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	redis  *redis.Client

	// Stores (using interfaces for proper abstraction)
	entryStore store.EntryStore
	imageStore store.ImageStore
	workQueue  store.WorkQueue

	// Service interfaces
	entryService service.EntryService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// the Redis client that must be established before application initialization.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	redisClient *redis.Client,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}

	// Initialize stores
	app.entryStore = redisstore.NewRedisEntryStore(redisClient, logger)
	app.imageStore = redisstore.NewRedisImageStore(redisClient, logger)
	app.workQueue = redisstore.NewRedisWorkQueue(redisClient, cfg.Ingest.QueueName, logger)

	payloadTTL := time.Duration(cfg.Ingest.PayloadTTLSeconds) * time.Second

	// Initialize entry service
	var err error
	app.entryService, err = service.NewEntryService(
		app.entryStore,
		app.imageStore,
		app.workQueue,
		payloadTTL,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing Redis connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
