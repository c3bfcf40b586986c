package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/platesnap/platesnap-api/internal/store"
)

// DefaultQueueName is the Redis list holding pending image IDs when no
// name is configured.
const DefaultQueueName = "analysis_queue"

// RedisWorkQueue implements the store.WorkQueue interface as a single
// named Redis list. RPUSH/BLPOP give FIFO order and atomic handoff: when
// several workers block on the same list, each popped ID is delivered to
// exactly one of them.
type RedisWorkQueue struct {
	client *redis.Client
	name   string
	logger *slog.Logger
}

// NewRedisWorkQueue creates a work queue backed by the named Redis list.
// An empty name selects DefaultQueueName.
// If logger is nil, a default logger will be used.
func NewRedisWorkQueue(client *redis.Client, name string, logger *slog.Logger) *RedisWorkQueue {
	if client == nil {
		panic("client cannot be nil")
	}

	if name == "" {
		name = DefaultQueueName
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisWorkQueue{
		client: client,
		name:   name,
		logger: logger.With(slog.String("component", "work_queue"), slog.String("queue", name)),
	}
}

// Ensure RedisWorkQueue implements store.WorkQueue interface
var _ store.WorkQueue = (*RedisWorkQueue)(nil)

// Push implements store.WorkQueue.Push.
func (q *RedisWorkQueue) Push(ctx context.Context, imageID uuid.UUID) error {
	if err := q.client.RPush(ctx, q.name, imageID.String()).Err(); err != nil {
		return fmt.Errorf("failed to push to work queue: %w", err)
	}

	q.logger.Debug("image queued for analysis", slog.String("image_id", imageID.String()))
	return nil
}

// Pop implements store.WorkQueue.Pop.
// It blocks up to timeout; an elapsed wait returns (uuid.Nil, false, nil).
// A malformed queue element is returned as an error so the caller's loop
// can log it and move on without treating it as a transport failure.
func (q *RedisWorkQueue) Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error) {
	res, err := q.client.BLPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Timed out with the queue empty.
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to pop from work queue: %w", err)
	}

	// BLPOP returns [key, value].
	if len(res) != 2 {
		return uuid.Nil, false, fmt.Errorf("unexpected BLPOP reply of length %d", len(res))
	}

	imageID, err := uuid.Parse(res[1])
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("malformed image ID %q in work queue: %w", res[1], err)
	}

	return imageID, true, nil
}

// Len implements store.WorkQueue.Len.
func (q *RedisWorkQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.name).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read work queue length: %w", err)
	}
	return n, nil
}
