package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platesnap/platesnap-api/internal/service"
	"github.com/platesnap/platesnap-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"entry not found", store.ErrEntryNotFound, http.StatusNotFound},
		{"image not found", store.ErrImageNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrEntryNotFound), http.StatusNotFound},
		{"empty batch", service.ErrEmptyBatch, http.StatusBadRequest},
		{"batch too large", service.ErrBatchTooLarge, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"data integrity", service.ErrDataIntegrity, http.StatusInternalServerError},
		{"unknown", errors.New("something broke"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Entry not found", GetSafeErrorMessage(store.ErrEntryNotFound))
	assert.Equal(t, "Image not found", GetSafeErrorMessage(store.ErrImageNotFound))
	assert.Equal(t, "No images uploaded", GetSafeErrorMessage(service.ErrEmptyBatch))
	assert.Equal(t, "Too many images in one upload", GetSafeErrorMessage(service.ErrBatchTooLarge))

	// Unknown errors never leak their message
	msg := GetSafeErrorMessage(errors.New("dial tcp 10.0.0.5:6379: connection refused"))
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "6379")

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
