package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EntryStatus represents the processing state of a food intake entry
type EntryStatus string

// Possible entry status values
const (
	EntryStatusNew        EntryStatus = "new"
	EntryStatusProcessing EntryStatus = "processing"

	// EntryStatusCompleted is part of the status vocabulary but no component
	// currently transitions an entry to it. Clients determine completion by
	// inspecting the per-image statuses, which are the authoritative signal.
	EntryStatusCompleted EntryStatus = "completed"
)

// Common validation errors for Entry
var (
	ErrEmptyEntryID       = errors.New("entry ID cannot be empty")
	ErrInvalidEntryStatus = errors.New("invalid entry status")
)

// Entry represents one logical food-intake event grouping one or more
// photographed images. The ordered list of image IDs belonging to an entry
// is persisted separately and is not part of this struct.
type Entry struct {
	ID        uuid.UUID   `json:"id"`
	Status    EntryStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewEntry creates a new Entry with a generated UUID, status "new",
// and the current creation timestamp.
func NewEntry() *Entry {
	return &Entry{
		ID:        uuid.New(),
		Status:    EntryStatusNew,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks if the Entry has valid data.
// Returns an error if any field fails validation.
func (e *Entry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEntryID
	}

	if !isValidEntryStatus(e.Status) {
		return ErrInvalidEntryStatus
	}

	return nil
}

// isValidEntryStatus checks if the given status is a valid EntryStatus.
func isValidEntryStatus(status EntryStatus) bool {
	switch status {
	case EntryStatusNew, EntryStatusProcessing, EntryStatusCompleted:
		return true
	default:
		return false
	}
}
