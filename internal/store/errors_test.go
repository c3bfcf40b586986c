package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrEntryNotFound))
	assert.True(t, IsNotFoundError(ErrImageNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrEntryNotFound)))

	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(ErrPayloadMissing))
	assert.False(t, IsNotFoundError(errors.New("some other error")))
}

func TestEntitySpecificErrorsWrapGeneric(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, ErrEntryNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrImageNotFound, ErrNotFound)
	// Payload absence is an expected lifecycle state, not a missing entity
	assert.NotErrorIs(t, ErrPayloadMissing, ErrNotFound)
}

func TestStoreError(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset")
	err := NewStoreError("image", "save", "redis pipeline failed", cause)

	assert.Contains(t, err.Error(), "save operation on image failed")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)

	var storeErr *StoreError
	assert.ErrorAs(t, error(err), &storeErr)
	assert.Equal(t, "image", storeErr.Entity)

	// Without a wrapped cause the message stands alone
	bare := NewStoreError("entry", "get", "decode failed", nil)
	assert.Equal(t, "get operation on entry failed: decode failed", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}
