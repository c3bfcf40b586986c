package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/platesnap/platesnap-api/internal/api"
	apiMiddleware "github.com/platesnap/platesnap-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	entryHandler := api.NewEntryHandler(
		app.entryService,
		app.config.Ingest.MaxBatchSize,
		app.logger,
	)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/entries", entryHandler.CreateEntry)
		r.Post("/entries/{entryID}/images", entryHandler.AttachImages)
		r.Get("/entries/{entryID}", entryHandler.GetEntry)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Readiness endpoint: verifies the Redis connection is usable
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.logger.Warn("Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	return r
}
