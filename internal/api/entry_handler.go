package api

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/platesnap/platesnap-api/internal/api/shared"
	"github.com/platesnap/platesnap-api/internal/platform/logger"
	"github.com/platesnap/platesnap-api/internal/service"
)

// imagesFormField is the multipart form field clients upload image files under.
const imagesFormField = "images"

// maxUploadBytes caps the in-memory portion of a multipart upload.
const maxUploadBytes = 32 << 20 // 32 MB

// EntryHandler handles entry-related HTTP requests
type EntryHandler struct {
	entryService service.EntryService
	maxBatchSize int
	logger       *slog.Logger
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(
	entryService service.EntryService,
	maxBatchSize int,
	logger *slog.Logger,
) *EntryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for EntryHandler")
	}
	if maxBatchSize <= 0 {
		maxBatchSize = service.DefaultMaxBatchSize
	}

	return &EntryHandler{
		entryService: entryService,
		maxBatchSize: maxBatchSize,
		logger:       logger.With(slog.String("component", "entry_handler")),
	}
}

// CreateEntry handles POST /api/entries requests.
// It creates a new, empty entry that images can later be attached to.
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	entry, err := h.entryService.CreateEntry(r.Context())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to create entry"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("entry created", slog.String("entry_id", entry.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, NewCreateEntryResponse(entry))
}

// AttachImages handles POST /api/entries/{entryID}/images requests.
// It accepts a multipart upload of one or more image files, persists them,
// and enqueues each for asynchronous analysis. Responds with 202 Accepted:
// analysis results become visible later through GetEntry.
func (h *EntryHandler) AttachImages(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Debug("failed to parse multipart form", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart upload")
		return
	}

	files := r.MultipartForm.File[imagesFormField]
	if len(files) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(service.ErrEmptyBatch))
		return
	}
	if len(files) > h.maxBatchSize {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(service.ErrBatchTooLarge))
		return
	}

	uploads := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		upload, err := readUpload(fh)
		if err != nil {
			log.Debug("failed to read uploaded file",
				slog.String("filename", fh.Filename),
				slog.String("error", err.Error()))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		uploads = append(uploads, upload)
	}

	imageIDs, err := h.entryService.AttachImages(r.Context(), entryID, uploads)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to accept images for analysis"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("images accepted for analysis",
		slog.String("entry_id", entryID.String()),
		slog.Int("count", len(imageIDs)))
	shared.RespondWithJSON(w, r, http.StatusAccepted, AttachImagesResponse{
		EntryID:  entryID,
		ImageIDs: imageIDs,
		Count:    len(imageIDs),
	})
}

// GetEntry handles GET /api/entries/{entryID} requests.
// It returns the entry along with every attached image and, for images whose
// analysis has completed, the analysis result.
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	detail, err := h.entryService.GetEntry(r.Context(), entryID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError &&
			!errors.Is(err, service.ErrDataIntegrity) {
			safeMessage = "Failed to get entry"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("entry retrieved",
		slog.String("entry_id", entryID.String()),
		slog.Int("image_count", len(detail.Images)))
	shared.RespondWithJSON(w, r, http.StatusOK, NewEntryResponse(detail))
}

// readUpload drains one multipart file header into an in-memory upload.
func readUpload(fh *multipart.FileHeader) (service.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.ImageUpload{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.ImageUpload{}, err
	}

	return service.ImageUpload{
		Filename: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}
