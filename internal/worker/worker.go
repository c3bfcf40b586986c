// Package worker implements the analysis worker: a long-running consumer
// that pops image IDs from the work queue, drives each image through its
// processing state machine, and records the outcome. The per-item step is
// a method separate from the loop driver so it can be tested without
// running the loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/platesnap/platesnap-api/internal/analysis"
	"github.com/platesnap/platesnap-api/internal/domain"
	"github.com/platesnap/platesnap-api/internal/store"
)

// payloadMissingMessage is the terminal error recorded when an image's raw
// bytes expired (or were never stored) before the worker reached it.
const payloadMissingMessage = "image payload not found (expired or never stored)"

// Dependency validation errors for Worker
var (
	ErrNilQueue    = errors.New("work queue cannot be nil")
	ErrNilImages   = errors.New("image store cannot be nil")
	ErrNilAnalyzer = errors.New("analyzer cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
)

// Config holds the timing settings of the worker loop.
type Config struct {
	// PopTimeout bounds each blocking queue pop so the loop periodically
	// re-checks its shutdown signal. An elapsed wait is not an error.
	PopTimeout time.Duration

	// ErrorBackoff is how long the loop pauses after a queue or store
	// transport failure before retrying. The loop itself never exits on
	// such failures.
	ErrorBackoff time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PopTimeout:   5 * time.Second,
		ErrorBackoff: 5 * time.Second,
	}
}

// Worker consumes image IDs from the work queue and processes each one:
// mark processing, fetch payload, invoke the analyzer, record the outcome.
// Multiple Worker instances may run concurrently against the same queue;
// the queue's atomic pop guarantees no two receive the same ID.
type Worker struct {
	queue    store.WorkQueue
	images   store.ImageStore
	analyzer analysis.Analyzer
	config   Config
	logger   *slog.Logger
}

// New creates a Worker with the given dependencies.
func New(
	queue store.WorkQueue,
	images store.ImageStore,
	analyzer analysis.Analyzer,
	config Config,
	logger *slog.Logger,
) (*Worker, error) {
	if queue == nil {
		return nil, ErrNilQueue
	}
	if images == nil {
		return nil, ErrNilImages
	}
	if analyzer == nil {
		return nil, ErrNilAnalyzer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	if config.PopTimeout <= 0 {
		config.PopTimeout = DefaultConfig().PopTimeout
	}
	if config.ErrorBackoff <= 0 {
		config.ErrorBackoff = DefaultConfig().ErrorBackoff
	}

	return &Worker{
		queue:    queue,
		images:   images,
		analyzer: analyzer,
		config:   config,
		logger:   logger.With(slog.String("component", "worker")),
	}, nil
}

// Run drives the consumption loop until ctx is cancelled. The item being
// processed when cancellation arrives is allowed to finish; the loop exits
// at the next iteration boundary.
//
// Failure isolation: an error while handling one image is logged and the
// loop moves on. A failure of the pop/transport mechanism itself pauses
// the loop for the configured backoff and retries indefinitely.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		slog.Duration("pop_timeout", w.config.PopTimeout),
		slog.Duration("error_backoff", w.config.ErrorBackoff))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping", slog.String("reason", ctx.Err().Error()))
			return nil
		default:
		}

		imageID, ok, err := w.queue.Pop(ctx, w.config.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("worker stopping", slog.String("reason", ctx.Err().Error()))
				return nil
			}

			w.logger.Error("failed to pop from work queue, backing off",
				slog.String("error", err.Error()),
				slog.Duration("backoff", w.config.ErrorBackoff))
			if !w.sleep(ctx, w.config.ErrorBackoff) {
				return nil
			}
			continue
		}

		if !ok {
			// Queue empty; just wait again.
			continue
		}

		if err := w.processImage(ctx, imageID); err != nil {
			// Per-item failures never terminate the loop.
			w.logger.Error("failed to process image",
				slog.String("image_id", imageID.String()),
				slog.String("error", err.Error()))
		}
	}
}

// processImage runs the state machine for a single dequeued image ID.
//
// Outcomes written to the store:
//   - payload missing          → status=error, no retry
//   - analyzer invocation fail → status=error, no retry
//   - analyzer output malformed→ status=completed with a degraded result
//   - success                  → status=completed with result + timestamp
//
// The returned error reports store-level trouble that prevented recording
// an outcome; terminal image errors are an outcome, not an error.
func (w *Worker) processImage(ctx context.Context, imageID uuid.UUID) (err error) {
	logger := w.logger.With(slog.String("image_id", imageID.String()))
	logger.Info("processing image")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing image %s: %v", imageID, r)
		}
	}()

	// Mark processing. Best-effort: forward progress is favored over
	// strict consistency, so a failed status write does not stop the item.
	if err := w.images.UpdateImageStatus(ctx, imageID, domain.ImageStatusProcessing, ""); err != nil {
		logger.Warn("failed to mark image as processing, continuing",
			slog.String("error", err.Error()))
	}

	payload, err := w.images.GetImagePayload(ctx, imageID)
	if err != nil {
		if errors.Is(err, store.ErrPayloadMissing) {
			// The payload cannot be recovered, so there is nothing to retry.
			logger.Warn("image payload missing, recording terminal error")
			return w.recordError(ctx, imageID, payloadMissingMessage)
		}
		return fmt.Errorf("failed to fetch image payload: %w", err)
	}

	mimeType := w.lookupMIMEType(ctx, imageID, logger)

	result, err := w.analyzer.Analyze(ctx, payload, mimeType)
	switch {
	case err == nil:
		// Fall through to record the outcome.
	case errors.Is(err, analysis.ErrMalformedOutput):
		// The model answered but not in the expected shape. The pipeline
		// still completes; the degradation is visible only in the result.
		logger.Warn("analyzer output malformed, recording degraded result",
			slog.String("error", err.Error()))
		result = domain.DegradedAnalysisResult()
	default:
		logger.Error("analyzer invocation failed, recording terminal error",
			slog.String("error", err.Error()))
		return w.recordError(ctx, imageID, err.Error())
	}

	if err := w.images.CompleteImage(ctx, imageID, result, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record analysis outcome: %w", err)
	}

	logger.Info("image analysis completed",
		slog.String("confidence", string(result.Confidence)))
	return nil
}

// recordError writes a terminal error outcome for the image.
func (w *Worker) recordError(ctx context.Context, imageID uuid.UUID, message string) error {
	if err := w.images.UpdateImageStatus(ctx, imageID, domain.ImageStatusError, message); err != nil {
		return fmt.Errorf("failed to record image error: %w", err)
	}
	return nil
}

// lookupMIMEType reads the declared MIME type from the image metadata.
// Metadata is guaranteed to exist for queued IDs, but a read failure here
// is not worth failing the item over; the original upload format was JPEG
// in the common case, so that is the fallback.
func (w *Worker) lookupMIMEType(ctx context.Context, imageID uuid.UUID, logger *slog.Logger) string {
	img, err := w.images.GetImage(ctx, imageID)
	if err != nil || img.MIMEType == "" {
		if err != nil {
			logger.Warn("failed to read image metadata for MIME type, assuming JPEG",
				slog.String("error", err.Error()))
		}
		return "image/jpeg"
	}
	return img.MIMEType
}

// sleep waits for the given duration unless ctx is cancelled first.
// Returns false when the wait was interrupted by cancellation.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
