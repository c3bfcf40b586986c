package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/platesnap/platesnap-api/internal/domain"
	"github.com/platesnap/platesnap-api/internal/service"
)

// CreateEntryResponse is returned after a new entry is created.
type CreateEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachImagesResponse acknowledges that an image batch was accepted
// for asynchronous analysis.
type AttachImagesResponse struct {
	EntryID  uuid.UUID   `json:"entry_id"`
	ImageIDs []uuid.UUID `json:"image_ids"`
	Count    int         `json:"count"`
}

// ImageResponse is the client view of a single image and, once analysis
// finishes, its result.
type ImageResponse struct {
	ID           uuid.UUID              `json:"id"`
	Filename     string                 `json:"filename"`
	MIMEType     string                 `json:"mime_type"`
	Size         int64                  `json:"size"`
	Status       string                 `json:"status"`
	UploadedAt   time.Time              `json:"uploaded_at"`
	ProcessedAt  *time.Time             `json:"processed_at,omitempty"`
	ErrorMessage string                 `json:"error,omitempty"`
	Analysis     *domain.AnalysisResult `json:"analysis,omitempty"`
}

// EntryResponse is the client view of an entry and all of its images.
type EntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Images    []ImageResponse `json:"images"`
}

// NewCreateEntryResponse builds the response DTO for a freshly created entry.
func NewCreateEntryResponse(entry *domain.Entry) CreateEntryResponse {
	return CreateEntryResponse{
		ID:        entry.ID,
		Status:    string(entry.Status),
		CreatedAt: entry.CreatedAt,
	}
}

// NewImageResponse converts a domain image to its API representation.
func NewImageResponse(img *domain.Image) ImageResponse {
	return ImageResponse{
		ID:           img.ID,
		Filename:     img.Filename,
		MIMEType:     img.MIMEType,
		Size:         img.Size,
		Status:       string(img.Status),
		UploadedAt:   img.UploadedAt,
		ProcessedAt:  img.ProcessedAt,
		ErrorMessage: img.ErrorMessage,
		Analysis:     img.Analysis,
	}
}

// NewEntryResponse converts an entry detail view to its API representation.
func NewEntryResponse(detail *service.EntryDetail) EntryResponse {
	images := make([]ImageResponse, 0, len(detail.Images))
	for _, img := range detail.Images {
		images = append(images, NewImageResponse(img))
	}
	return EntryResponse{
		ID:        detail.Entry.ID,
		Status:    string(detail.Entry.Status),
		CreatedAt: detail.Entry.CreatedAt,
		Images:    images,
	}
}
