package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/platesnap/platesnap-api/internal/domain"
	"github.com/platesnap/platesnap-api/internal/platform/logger"
	"github.com/platesnap/platesnap-api/internal/store"
)

// Hash field names for image metadata records.
const (
	imageFieldFilename    = "filename"
	imageFieldMIMEType    = "mime_type"
	imageFieldSize        = "size"
	imageFieldStatus      = "status"
	imageFieldUploadedAt  = "uploaded_at"
	imageFieldProcessedAt = "processed_at"
	imageFieldError       = "error"
	imageFieldAnalysis    = "analysis"
)

// RedisImageStore implements the store.ImageStore interface using a Redis
// hash for metadata and a TTL-bounded string key for the raw payload.
type RedisImageStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisImageStore creates a new Redis implementation of the ImageStore
// interface. It accepts a connected client managed by the caller.
// If logger is nil, a default logger will be used.
func NewRedisImageStore(client *redis.Client, logger *slog.Logger) *RedisImageStore {
	if client == nil {
		panic("client cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisImageStore{
		client: client,
		logger: logger.With(slog.String("component", "image_store")),
	}
}

// Ensure RedisImageStore implements store.ImageStore interface
var _ store.ImageStore = (*RedisImageStore)(nil)

// SaveImage implements store.ImageStore.SaveImage.
// Payload and metadata are written in one MULTI/EXEC pipeline, so both are
// acknowledged before SaveImage returns. Callers rely on this ordering:
// an image ID pushed to the work queue after SaveImage always resolves to
// a metadata record, even if the payload later expires.
func (s *RedisImageStore) SaveImage(
	ctx context.Context,
	img *domain.Image,
	payload []byte,
	ttl time.Duration,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := img.Validate(); err != nil {
		log.Warn("image validation failed during save",
			slog.String("error", err.Error()),
			slog.String("image_id", img.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", store.ErrInvalidEntity)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, imagePayloadKey(img.ID), payload, ttl)
	pipe.HSet(ctx, imageMetadataKey(img.ID),
		imageFieldFilename, img.Filename,
		imageFieldMIMEType, img.MIMEType,
		imageFieldSize, strconv.FormatInt(img.Size, 10),
		imageFieldStatus, string(img.Status),
		imageFieldUploadedAt, img.UploadedAt.UTC().Format(time.RFC3339Nano),
	)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("failed to save image",
			slog.String("error", err.Error()),
			slog.String("image_id", img.ID.String()))
		return store.NewStoreError("image", "save", "redis pipeline failed", err)
	}

	log.Info("image saved",
		slog.String("image_id", img.ID.String()),
		slog.String("filename", img.Filename),
		slog.Int64("size", img.Size),
		slog.Duration("payload_ttl", ttl))
	return nil
}

// GetImage implements store.ImageStore.GetImage.
// Returns store.ErrImageNotFound if no metadata record exists.
func (s *RedisImageStore) GetImage(ctx context.Context, imageID uuid.UUID) (*domain.Image, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fields, err := s.client.HGetAll(ctx, imageMetadataKey(imageID)).Result()
	if err != nil {
		log.Error("failed to get image metadata",
			slog.String("error", err.Error()),
			slog.String("image_id", imageID.String()))
		return nil, store.NewStoreError("image", "get", "redis read failed", err)
	}

	if len(fields) == 0 {
		return nil, store.ErrImageNotFound
	}

	img, err := imageFromFields(imageID, fields)
	if err != nil {
		log.Error("failed to decode image record",
			slog.String("error", err.Error()),
			slog.String("image_id", imageID.String()))
		return nil, err
	}

	return img, nil
}

// GetImagePayload implements store.ImageStore.GetImagePayload.
// Returns store.ErrPayloadMissing if the payload expired or was never
// stored; the caller decides how to surface that.
func (s *RedisImageStore) GetImagePayload(ctx context.Context, imageID uuid.UUID) ([]byte, error) {
	payload, err := s.client.Get(ctx, imagePayloadKey(imageID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrPayloadMissing
		}
		return nil, fmt.Errorf("failed to get image payload: %w", err)
	}
	return payload, nil
}

// UpdateImageStatus implements store.ImageStore.UpdateImageStatus.
func (s *RedisImageStore) UpdateImageStatus(
	ctx context.Context,
	imageID uuid.UUID,
	status domain.ImageStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	values := []any{imageFieldStatus, string(status)}
	if errorMsg != "" {
		values = append(values, imageFieldError, errorMsg)
	}

	if err := s.client.HSet(ctx, imageMetadataKey(imageID), values...).Err(); err != nil {
		log.Error("failed to update image status",
			slog.String("error", err.Error()),
			slog.String("image_id", imageID.String()),
			slog.String("status", string(status)))
		return fmt.Errorf("%w: image status: %v", store.ErrUpdateFailed, err)
	}

	log.Debug("image status updated",
		slog.String("image_id", imageID.String()),
		slog.String("status", string(status)))
	return nil
}

// CompleteImage implements store.ImageStore.CompleteImage.
// Status, analysis JSON, and the processed timestamp land in one HSET so a
// reader never observes a completed image without its result.
func (s *RedisImageStore) CompleteImage(
	ctx context.Context,
	imageID uuid.UUID,
	result *domain.AnalysisResult,
	processedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if result == nil {
		return fmt.Errorf("%w: nil analysis result", store.ErrInvalidEntity)
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	analysisJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	err = s.client.HSet(ctx, imageMetadataKey(imageID),
		imageFieldStatus, string(domain.ImageStatusCompleted),
		imageFieldAnalysis, string(analysisJSON),
		imageFieldProcessedAt, processedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		log.Error("failed to record analysis outcome",
			slog.String("error", err.Error()),
			slog.String("image_id", imageID.String()))
		return fmt.Errorf("%w: analysis outcome: %v", store.ErrUpdateFailed, err)
	}

	log.Info("image analysis recorded",
		slog.String("image_id", imageID.String()),
		slog.String("confidence", string(result.Confidence)))
	return nil
}

// imageFromFields decodes an image metadata hash into a domain.Image.
func imageFromFields(imageID uuid.UUID, fields map[string]string) (*domain.Image, error) {
	size, err := strconv.ParseInt(fields[imageFieldSize], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed image size %q: %w", fields[imageFieldSize], err)
	}

	uploadedAt, err := time.Parse(time.RFC3339Nano, fields[imageFieldUploadedAt])
	if err != nil {
		return nil, fmt.Errorf("malformed image uploaded_at %q: %w", fields[imageFieldUploadedAt], err)
	}

	img := &domain.Image{
		ID:           imageID,
		Filename:     fields[imageFieldFilename],
		MIMEType:     fields[imageFieldMIMEType],
		Size:         size,
		Status:       domain.ImageStatus(fields[imageFieldStatus]),
		UploadedAt:   uploadedAt,
		ErrorMessage: fields[imageFieldError],
	}

	if raw, ok := fields[imageFieldProcessedAt]; ok && raw != "" {
		processedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("malformed image processed_at %q: %w", raw, err)
		}
		img.ProcessedAt = &processedAt
	}

	if raw, ok := fields[imageFieldAnalysis]; ok && raw != "" {
		var result domain.AnalysisResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("malformed analysis result for image %s: %w", imageID, err)
		}
		img.Analysis = &result
	}

	return img, nil
}
