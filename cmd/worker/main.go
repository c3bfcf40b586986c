// Package main implements the entry point for the platesnap analysis
// worker, which consumes queued image IDs and records calorie-analysis
// results produced by the vision model.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platesnap/platesnap-api/internal/config"
	"github.com/platesnap/platesnap-api/internal/platform/gemini"
	"github.com/platesnap/platesnap-api/internal/platform/logger"
	"github.com/platesnap/platesnap-api/internal/platform/redisstore"
	"github.com/platesnap/platesnap-api/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
	os.Exit(0)
}

// run wires the worker's dependencies and blocks until a shutdown signal
// arrives and the consumption loop drains its in-flight item.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Worker configuration loaded",
		"log_level", cfg.Server.LogLevel,
		"redis_addr", cfg.Redis.Addr,
		"queue_name", cfg.Ingest.QueueName,
		"model_name", cfg.LLM.ModelName)

	redisClient, err := redisstore.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			appLogger.Error("Error closing Redis connection", "error", closeErr)
		}
	}()

	imageStore := redisstore.NewRedisImageStore(redisClient, appLogger)
	workQueue := redisstore.NewRedisWorkQueue(redisClient, cfg.Ingest.QueueName, appLogger)

	analyzer, err := gemini.NewAnalyzer(
		ctx,
		appLogger.With("component", "gemini_analyzer"),
		cfg.LLM,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	appLogger.Info("Analyzer initialized successfully")

	w, err := worker.New(workQueue, imageStore, analyzer, worker.Config{
		PopTimeout:   time.Duration(cfg.Worker.PopTimeoutSeconds) * time.Second,
		ErrorBackoff: time.Duration(cfg.Worker.ErrorBackoffSeconds) * time.Second,
	}, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	appLogger.Info("Worker started, waiting for queued images")
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("worker stopped with error: %w", err)
	}

	appLogger.Info("Worker shutdown completed")
	return nil
}
