package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ImageStatus represents the processing state of an uploaded image
type ImageStatus string

// Possible image status values. An image moves pending → processing →
// {completed | error}; the terminal states are never left.
const (
	ImageStatusPending    ImageStatus = "pending"
	ImageStatusProcessing ImageStatus = "processing"
	ImageStatusCompleted  ImageStatus = "completed"
	ImageStatusError      ImageStatus = "error"
)

// Common validation errors for Image
var (
	ErrEmptyImageID       = errors.New("image ID cannot be empty")
	ErrEmptyImageFilename = errors.New("image filename cannot be empty")
	ErrEmptyImageMIMEType = errors.New("image MIME type cannot be empty")
	ErrInvalidImageSize   = errors.New("image size must be positive")
	ErrInvalidImageStatus = errors.New("invalid image status")
)

// Image represents one uploaded photograph plus its processing metadata and
// eventual analysis. The raw byte payload is stored separately with a
// bounded TTL and may expire while this metadata still exists.
type Image struct {
	ID           uuid.UUID       `json:"id"`
	Filename     string          `json:"filename"`
	MIMEType     string          `json:"mime_type"`
	Size         int64           `json:"size"`
	Status       ImageStatus     `json:"status"`
	UploadedAt   time.Time       `json:"uploaded_at"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
	Analysis     *AnalysisResult `json:"analysis,omitempty"`
}

// NewImage creates a new Image with a generated UUID, status "pending",
// and the current upload timestamp.
// Returns an error if validation fails.
func NewImage(filename, mimeType string, size int64) (*Image, error) {
	img := &Image{
		ID:         uuid.New(),
		Filename:   filename,
		MIMEType:   mimeType,
		Size:       size,
		Status:     ImageStatusPending,
		UploadedAt: time.Now().UTC(),
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}

	return img, nil
}

// Validate checks if the Image has valid data.
// Returns an error if any field fails validation.
func (i *Image) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyImageID
	}

	if i.Filename == "" {
		return ErrEmptyImageFilename
	}

	if i.MIMEType == "" {
		return ErrEmptyImageMIMEType
	}

	if i.Size <= 0 {
		return ErrInvalidImageSize
	}

	if !isValidImageStatus(i.Status) {
		return ErrInvalidImageStatus
	}

	return nil
}

// IsTerminal reports whether the image has reached a final state.
func (i *Image) IsTerminal() bool {
	return i.Status == ImageStatusCompleted || i.Status == ImageStatusError
}

// isValidImageStatus checks if the given status is a valid ImageStatus.
func isValidImageStatus(status ImageStatus) bool {
	switch status {
	case ImageStatusPending, ImageStatusProcessing, ImageStatusCompleted, ImageStatusError:
		return true
	default:
		return false
	}
}
