package api

import (
	"errors"
	"net/http"

	"github.com/platesnap/platesnap-api/internal/service"
	"github.com/platesnap/platesnap-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrEntryNotFound),
		errors.Is(err, store.ErrImageNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrBatchTooLarge),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error (includes data integrity faults,
	// which are server-side invariant violations, not caller mistakes)
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrEntryNotFound):
		return "Entry not found"

	case errors.Is(err, store.ErrImageNotFound):
		return "Image not found"

	case errors.Is(err, service.ErrEmptyBatch):
		return "No images uploaded"

	case errors.Is(err, service.ErrBatchTooLarge):
		return "Too many images in one upload"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid upload data"

	case errors.Is(err, service.ErrDataIntegrity):
		return "Entry data is inconsistent"

	default:
		return "An unexpected error occurred"
	}
}
