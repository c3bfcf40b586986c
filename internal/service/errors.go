package service

import "errors"

// Common service errors
var (
	// ErrEmptyBatch is returned when an image attachment request carries no
	// images. The operation performs no store mutation in this case.
	ErrEmptyBatch = errors.New("image batch cannot be empty")

	// ErrBatchTooLarge is returned when an image attachment request exceeds
	// the configured per-batch limit.
	ErrBatchTooLarge = errors.New("image batch exceeds maximum size")

	// ErrDataIntegrity is returned when stored records violate an
	// invariant, e.g. an entry's image list references metadata that does
	// not exist. Surfaced rather than silently dropped so operators notice.
	ErrDataIntegrity = errors.New("data integrity fault")
)
