package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/platesnap/platesnap-api/internal/domain"
	"github.com/platesnap/platesnap-api/internal/store"
)

// Dependency validation errors for EntryService
var (
	ErrNilEntryStore = errors.New("entry store cannot be nil")
	ErrNilImageStore = errors.New("image store cannot be nil")
	ErrNilWorkQueue  = errors.New("work queue cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
)

// ImageUpload carries one uploaded image through the ingestion path.
type ImageUpload struct {
	Filename string
	MIMEType string
	Size     int64
	Data     []byte
}

// EntryDetail is the assembled read view of an entry: the entry's own
// fields plus every image in upload order, including analysis results
// where present.
type EntryDetail struct {
	Entry  *domain.Entry
	Images []*domain.Image
}

// EntryService provides entry-related operations: creating entries,
// ingesting image batches, and assembling the entry read view.
type EntryService interface {
	// CreateEntry creates a new entry with status "new".
	CreateEntry(ctx context.Context) (*domain.Entry, error)

	// AttachImages ingests one upload batch for an existing entry and
	// returns the generated image IDs in upload order.
	AttachImages(ctx context.Context, entryID uuid.UUID, uploads []ImageUpload) ([]uuid.UUID, error)

	// GetEntry returns the entry plus all of its images in upload order.
	GetEntry(ctx context.Context, entryID uuid.UUID) (*EntryDetail, error)
}

// DefaultMaxBatchSize is the fallback cap on images per attachment request
// when no limit is configured.
const DefaultMaxBatchSize = 10

// entryService implements the ingestion and query paths of the analysis
// pipeline. It owns the ordering guarantee between durable image writes
// and queue pushes; the worker never has to tolerate missing metadata.
type entryService struct {
	entryStore store.EntryStore
	imageStore store.ImageStore
	queue      store.WorkQueue
	payloadTTL time.Duration
	logger     *slog.Logger
}

// NewEntryService creates a new EntryService with the given dependencies.
// payloadTTL bounds the retention of raw image bytes.
func NewEntryService(
	entryStore store.EntryStore,
	imageStore store.ImageStore,
	queue store.WorkQueue,
	payloadTTL time.Duration,
	logger *slog.Logger,
) (EntryService, error) {
	if entryStore == nil {
		return nil, ErrNilEntryStore
	}
	if imageStore == nil {
		return nil, ErrNilImageStore
	}
	if queue == nil {
		return nil, ErrNilWorkQueue
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if payloadTTL <= 0 {
		return nil, fmt.Errorf("payload TTL must be positive, got %s", payloadTTL)
	}

	return &entryService{
		entryStore: entryStore,
		imageStore: imageStore,
		queue:      queue,
		payloadTTL: payloadTTL,
		logger:     logger.With(slog.String("component", "entry_service")),
	}, nil
}

// CreateEntry creates a new entry with status "new".
func (s *entryService) CreateEntry(ctx context.Context) (*domain.Entry, error) {
	entry := domain.NewEntry()

	if err := s.entryStore.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return entry, nil
}

// AttachImages runs the ingestion path for one upload batch: each image is
// durably stored (payload with TTL, metadata without), appended to the
// entry's ordered image list, and then queued for analysis. After the full
// batch the entry status is set to "processing"; the write is idempotent
// so concurrent batches race harmlessly.
//
// Returns store.ErrEntryNotFound if the entry does not exist and
// ErrEmptyBatch for an empty batch, in both cases without mutating the
// store. A failure partway through the batch returns the error but leaves
// the already-stored images valid and queued.
func (s *entryService) AttachImages(
	ctx context.Context,
	entryID uuid.UUID,
	uploads []ImageUpload,
) ([]uuid.UUID, error) {
	if len(uploads) == 0 {
		return nil, ErrEmptyBatch
	}

	exists, err := s.entryStore.EntryExists(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check entry existence: %w", err)
	}
	if !exists {
		return nil, store.ErrEntryNotFound
	}

	logger := s.logger.With(slog.String("entry_id", entryID.String()))

	imageIDs := make([]uuid.UUID, 0, len(uploads))
	for i, upload := range uploads {
		img, err := domain.NewImage(upload.Filename, upload.MIMEType, upload.Size)
		if err != nil {
			return imageIDs, fmt.Errorf("invalid image at index %d: %w", i, err)
		}

		// Metadata and payload must be acknowledged before the ID becomes
		// visible to workers via the queue.
		if err := s.imageStore.SaveImage(ctx, img, upload.Data, s.payloadTTL); err != nil {
			return imageIDs, fmt.Errorf("failed to store image at index %d: %w", i, err)
		}

		if err := s.entryStore.AppendEntryImage(ctx, entryID, img.ID); err != nil {
			return imageIDs, fmt.Errorf("failed to link image %s to entry: %w", img.ID, err)
		}

		if err := s.queue.Push(ctx, img.ID); err != nil {
			return imageIDs, fmt.Errorf("failed to queue image %s: %w", img.ID, err)
		}

		imageIDs = append(imageIDs, img.ID)
	}

	if err := s.entryStore.UpdateEntryStatus(ctx, entryID, domain.EntryStatusProcessing); err != nil {
		return imageIDs, fmt.Errorf("failed to update entry status: %w", err)
	}

	logger.Info("image batch attached",
		slog.Int("count", len(imageIDs)))
	return imageIDs, nil
}

// GetEntry runs the query path: the entry's fields plus, for every image
// ID in its list in upload order, that image's current metadata and
// analysis result if present.
//
// Returns store.ErrEntryNotFound if the entry record is absent. A listed
// image whose metadata has disappeared violates a store invariant and is
// surfaced as ErrDataIntegrity rather than dropped from the view.
func (s *entryService) GetEntry(ctx context.Context, entryID uuid.UUID) (*EntryDetail, error) {
	entry, err := s.entryStore.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	imageIDs, err := s.entryStore.GetEntryImageIDs(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry image list: %w", err)
	}

	images := make([]*domain.Image, 0, len(imageIDs))
	for _, imageID := range imageIDs {
		img, err := s.imageStore.GetImage(ctx, imageID)
		if err != nil {
			if errors.Is(err, store.ErrImageNotFound) {
				return nil, fmt.Errorf("%w: entry %s lists image %s but its metadata is missing",
					ErrDataIntegrity, entryID, imageID)
			}
			return nil, fmt.Errorf("failed to read image %s: %w", imageID, err)
		}
		images = append(images, img)
	}

	return &EntryDetail{
		Entry:  entry,
		Images: images,
	}, nil
}
