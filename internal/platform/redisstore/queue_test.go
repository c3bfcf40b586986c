package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisWorkQueue_PushPop(t *testing.T) {
	t.Parallel()
	_, client := newTestClient(t)
	queue := NewRedisWorkQueue(client, "", nil)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, queue.Push(ctx, first))
	require.NoError(t, queue.Push(ctx, second))

	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// FIFO order
	got, ok, err := queue.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, got)

	got, ok, err = queue.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got)

	n, err = queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRedisWorkQueue_PopEmptyTimesOut(t *testing.T) {
	t.Parallel()
	_, client := newTestClient(t)
	queue := NewRedisWorkQueue(client, "", nil)

	got, ok, err := queue.Pop(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, got)
}

func TestRedisWorkQueue_PopMalformedElement(t *testing.T) {
	t.Parallel()
	mr, client := newTestClient(t)
	queue := NewRedisWorkQueue(client, "test_queue", nil)

	_, err := mr.Push("test_queue", "not-a-uuid")
	require.NoError(t, err)

	_, ok, err := queue.Pop(context.Background(), time.Second)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "malformed image ID")
}

func TestRedisWorkQueue_NoDuplicateSuppression(t *testing.T) {
	t.Parallel()
	_, client := newTestClient(t)
	queue := NewRedisWorkQueue(client, "", nil)
	ctx := context.Background()

	// The queue is a plain list: pushing the same ID twice yields two
	// deliveries, and consumers must tolerate that.
	imageID := uuid.New()
	require.NoError(t, queue.Push(ctx, imageID))
	require.NoError(t, queue.Push(ctx, imageID))

	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
