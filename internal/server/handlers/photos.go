package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/internal/server/storage"
	"github.com/vitalog/vitalog/pkg/api"
)

// maxPhotoSize bounds an uploaded meal photo.
const maxPhotoSize = 10 << 20

// PhotoHandler stores meal photos on disk and records their URLs.
type PhotoHandler struct {
	logger    *slog.Logger
	records   storage.RecordStorage
	uploadDir string
}

func NewPhotoHandler(logger *slog.Logger, records storage.RecordStorage, uploadDir string) *PhotoHandler {
	return &PhotoHandler{
		logger:    logger,
		records:   records,
		uploadDir: uploadDir,
	}
}

// Upload handles POST /api/v1/meals/{id}/photo with a multipart "photo"
// field. The photo URL is written back into the meal's stored payload.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	record, err := h.records.GetRecord(ctx, deviceID, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			sendError(h.logger, w, "meal not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get meal", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if record.Type != models.RecordTypeMeal {
		sendError(h.logger, w, "record is not a meal", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		sendError(h.logger, w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		sendError(h.logger, w, "missing photo field", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		sendError(h.logger, w, "unsupported photo format", http.StatusBadRequest)
		return
	}

	fileName := fmt.Sprintf("%s%s", id, ext)
	destPath := filepath.Join(h.uploadDir, fileName)
	dest, err := os.Create(destPath)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create photo file", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = dest.Close() }()

	if _, err := io.Copy(dest, io.LimitReader(file, maxPhotoSize)); err != nil {
		h.logger.ErrorContext(ctx, "failed to write photo file", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	photoURL := "/static/" + fileName

	var meal api.Meal
	if err := json.Unmarshal(record.Payload, &meal); err != nil {
		h.logger.ErrorContext(ctx, "corrupt meal payload", slog.String("record_id", id), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	meal.PhotoURL = photoURL
	meal.UpdatedAt = time.Now()

	payload, err := json.Marshal(&meal)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal meal", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	record.Payload = payload
	record.UpdatedAt = meal.UpdatedAt

	if err := h.records.UpsertRecord(ctx, record); err != nil {
		h.logger.ErrorContext(ctx, "failed to save meal", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "photo attached",
		slog.String("record_id", id),
		slog.String("photo_url", photoURL))

	sendJSON(h.logger, w, api.UploadResponse{PhotoURL: photoURL}, http.StatusOK)
}
