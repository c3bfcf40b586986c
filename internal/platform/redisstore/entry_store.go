package redisstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/platesnap/platesnap-api/internal/domain"
	"github.com/platesnap/platesnap-api/internal/platform/logger"
	"github.com/platesnap/platesnap-api/internal/store"
)

// Hash field names for entry records.
const (
	entryFieldStatus    = "status"
	entryFieldCreatedAt = "created_at"
)

// RedisEntryStore implements the store.EntryStore interface using Redis
// hashes for entry records and a Redis list for the per-entry image order.
type RedisEntryStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisEntryStore creates a new Redis implementation of the EntryStore
// interface. It accepts a connected client managed by the caller.
// If logger is nil, a default logger will be used.
func NewRedisEntryStore(client *redis.Client, logger *slog.Logger) *RedisEntryStore {
	if client == nil {
		panic("client cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisEntryStore{
		client: client,
		logger: logger.With(slog.String("component", "entry_store")),
	}
}

// Ensure RedisEntryStore implements store.EntryStore interface
var _ store.EntryStore = (*RedisEntryStore)(nil)

// CreateEntry implements store.EntryStore.CreateEntry.
// Returns validation errors from the domain Entry if data is invalid.
func (s *RedisEntryStore) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("entry validation failed during create",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	err := s.client.HSet(ctx, entryKey(entry.ID),
		entryFieldStatus, string(entry.Status),
		entryFieldCreatedAt, entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		log.Error("failed to create entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return store.NewStoreError("entry", "create", "redis write failed", err)
	}

	log.Info("entry created successfully",
		slog.String("entry_id", entry.ID.String()),
		slog.String("status", string(entry.Status)))
	return nil
}

// GetEntry implements store.EntryStore.GetEntry.
// Returns store.ErrEntryNotFound if the entry does not exist.
func (s *RedisEntryStore) GetEntry(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fields, err := s.client.HGetAll(ctx, entryKey(entryID)).Result()
	if err != nil {
		log.Error("failed to get entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entryID.String()))
		return nil, store.NewStoreError("entry", "get", "redis read failed", err)
	}

	// HGETALL returns an empty map for a missing key.
	if len(fields) == 0 {
		return nil, store.ErrEntryNotFound
	}

	entry, err := entryFromFields(entryID, fields)
	if err != nil {
		log.Error("failed to decode entry record",
			slog.String("error", err.Error()),
			slog.String("entry_id", entryID.String()))
		return nil, err
	}

	return entry, nil
}

// EntryExists implements store.EntryStore.EntryExists.
func (s *RedisEntryStore) EntryExists(ctx context.Context, entryID uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, entryKey(entryID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}
	return n > 0, nil
}

// UpdateEntryStatus implements store.EntryStore.UpdateEntryStatus.
// The write is idempotent; repeated calls with the same status succeed.
// Returns store.ErrEntryNotFound if the entry record is absent.
func (s *RedisEntryStore) UpdateEntryStatus(
	ctx context.Context,
	entryID uuid.UUID,
	status domain.EntryStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	exists, err := s.EntryExists(ctx, entryID)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrEntryNotFound
	}

	if err := s.client.HSet(ctx, entryKey(entryID), entryFieldStatus, string(status)).Err(); err != nil {
		log.Error("failed to update entry status",
			slog.String("error", err.Error()),
			slog.String("entry_id", entryID.String()),
			slog.String("status", string(status)))
		return fmt.Errorf("%w: entry status: %v", store.ErrUpdateFailed, err)
	}

	log.Debug("entry status updated",
		slog.String("entry_id", entryID.String()),
		slog.String("status", string(status)))
	return nil
}

// AppendEntryImage implements store.EntryStore.AppendEntryImage.
// RPUSH is atomic, so concurrent ingestion batches interleave without
// losing entries; within one batch upload order is preserved.
func (s *RedisEntryStore) AppendEntryImage(ctx context.Context, entryID, imageID uuid.UUID) error {
	if err := s.client.RPush(ctx, entryImagesKey(entryID), imageID.String()).Err(); err != nil {
		return fmt.Errorf("failed to append image to entry list: %w", err)
	}
	return nil
}

// GetEntryImageIDs implements store.EntryStore.GetEntryImageIDs.
func (s *RedisEntryStore) GetEntryImageIDs(
	ctx context.Context,
	entryID uuid.UUID,
) ([]uuid.UUID, error) {
	raw, err := s.client.LRange(ctx, entryImagesKey(entryID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry image list: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("malformed image ID %q in entry list: %w", v, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// entryFromFields decodes an entry hash into a domain.Entry.
func entryFromFields(entryID uuid.UUID, fields map[string]string) (*domain.Entry, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields[entryFieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("malformed entry created_at %q: %w", fields[entryFieldCreatedAt], err)
	}

	return &domain.Entry{
		ID:        entryID,
		Status:    domain.EntryStatus(fields[entryFieldStatus]),
		CreatedAt: createdAt,
	}, nil
}
