package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/platesnap/platesnap-api/internal/domain"
)

// EntryStore defines the interface for persisting entries and the ordered
// association between an entry and its uploaded images.
type EntryStore interface {
	// CreateEntry persists a new entry record.
	CreateEntry(ctx context.Context, entry *domain.Entry) error

	// GetEntry retrieves an entry by its ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	GetEntry(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error)

	// EntryExists reports whether an entry record exists.
	EntryExists(ctx context.Context, entryID uuid.UUID) (bool, error)

	// UpdateEntryStatus sets the entry's status. The write is idempotent;
	// re-setting the current value is not an error.
	UpdateEntryStatus(ctx context.Context, entryID uuid.UUID, status domain.EntryStatus) error

	// AppendEntryImage atomically appends an image ID to the end of the
	// entry's ordered image list. List order is upload order.
	AppendEntryImage(ctx context.Context, entryID, imageID uuid.UUID) error

	// GetEntryImageIDs returns the entry's image IDs in upload order.
	// An entry with no images yields an empty slice, not an error.
	GetEntryImageIDs(ctx context.Context, entryID uuid.UUID) ([]uuid.UUID, error)
}

// ImageStore defines the interface for persisting image metadata and the
// time-bounded raw byte payload.
type ImageStore interface {
	// SaveImage durably stores the image metadata (status included) and the
	// raw payload in one operation. The payload expires after ttl; the
	// metadata does not expire. SaveImage must not return before both
	// writes are acknowledged, so that an identifier queued immediately
	// afterwards always resolves to a metadata record.
	SaveImage(ctx context.Context, img *domain.Image, payload []byte, ttl time.Duration) error

	// GetImage retrieves image metadata by ID, including the analysis
	// result if one has been recorded.
	// Returns ErrImageNotFound if no metadata record exists.
	GetImage(ctx context.Context, imageID uuid.UUID) (*domain.Image, error)

	// GetImagePayload retrieves the raw image bytes.
	// Returns ErrPayloadMissing if the payload expired or was never stored.
	GetImagePayload(ctx context.Context, imageID uuid.UUID) ([]byte, error)

	// UpdateImageStatus sets the image's status and, for the error state,
	// the accompanying message. Passing an empty errorMsg clears nothing;
	// it is simply not written.
	UpdateImageStatus(ctx context.Context, imageID uuid.UUID, status domain.ImageStatus, errorMsg string) error

	// CompleteImage records a successful analysis outcome: status
	// "completed", the immutable analysis result, and the processing
	// timestamp, in a single write.
	CompleteImage(ctx context.Context, imageID uuid.UUID, result *domain.AnalysisResult, processedAt time.Time) error
}

// WorkQueue defines the interface for the FIFO queue of pending image IDs
// that decouples ingestion from analysis. Any number of consumers may
// compete for items; each item is delivered to exactly one of them
// (at-least-once overall, since producers may push duplicates).
type WorkQueue interface {
	// Push appends an image ID to the tail of the queue. Non-blocking.
	Push(ctx context.Context, imageID uuid.UUID) error

	// Pop removes and returns the ID at the head of the queue, blocking up
	// to timeout. The second return value is false when the wait elapsed
	// with the queue empty, which is not an error.
	Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error)

	// Len returns the number of IDs currently queued.
	Len(ctx context.Context) (int64, error)
}
