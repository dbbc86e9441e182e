package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/internal/server/storage"
	"github.com/vitalog/vitalog/internal/validation"
	"github.com/vitalog/vitalog/pkg/api"
)

// RecordsHandler serves the meal and water CRUD endpoints. Creates are
// upserts keyed by the client-generated ID, so an offline client retrying
// an upload cannot duplicate an entry.
type RecordsHandler struct {
	logger  *slog.Logger
	records storage.RecordStorage
}

func NewRecordsHandler(logger *slog.Logger, records storage.RecordStorage) *RecordsHandler {
	return &RecordsHandler{
		logger:  logger,
		records: records,
	}
}

// ListMeals handles GET /api/v1/meals?date=YYYY-MM-DD
func (h *RecordsHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	deviceID, date, ok := h.listScope(w, r)
	if !ok {
		return
	}

	stored, err := h.records.ListRecords(r.Context(), deviceID, models.RecordTypeMeal, date)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list meals", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	meals := make([]api.Meal, 0, len(stored))
	for _, record := range stored {
		var meal api.Meal
		if err := json.Unmarshal(record.Payload, &meal); err != nil {
			h.logger.ErrorContext(r.Context(), "corrupt meal payload", slog.String("record_id", record.ID), slog.Any("error", err))
			continue
		}
		meals = append(meals, meal)
	}

	sendJSON(h.logger, w, meals, http.StatusOK)
}

// CreateMeal handles POST /api/v1/meals
func (h *RecordsHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	meal, ok := h.decodeMeal(w, r)
	if !ok {
		return
	}
	if meal.ID == "" {
		meal.ID = uuid.New().String()
	}

	if !h.saveMeal(w, r, deviceID, meal) {
		return
	}
	sendJSON(h.logger, w, meal, http.StatusCreated)
}

// UpdateMeal handles PUT /api/v1/meals/{id}
func (h *RecordsHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if _, err := h.records.GetRecord(r.Context(), deviceID, id); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			sendError(h.logger, w, "meal not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get meal", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	meal, ok := h.decodeMeal(w, r)
	if !ok {
		return
	}
	meal.ID = id

	if !h.saveMeal(w, r, deviceID, meal) {
		return
	}
	sendJSON(h.logger, w, meal, http.StatusOK)
}

// DeleteMeal handles DELETE /api/v1/meals/{id}
func (h *RecordsHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "meal")
}

// ListWater handles GET /api/v1/water?date=YYYY-MM-DD
func (h *RecordsHandler) ListWater(w http.ResponseWriter, r *http.Request) {
	deviceID, date, ok := h.listScope(w, r)
	if !ok {
		return
	}

	stored, err := h.records.ListRecords(r.Context(), deviceID, models.RecordTypeWater, date)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list water entries", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	logs := make([]api.WaterLog, 0, len(stored))
	for _, record := range stored {
		var entry api.WaterLog
		if err := json.Unmarshal(record.Payload, &entry); err != nil {
			h.logger.ErrorContext(r.Context(), "corrupt water payload", slog.String("record_id", record.ID), slog.Any("error", err))
			continue
		}
		logs = append(logs, entry)
	}

	sendJSON(h.logger, w, logs, http.StatusOK)
}

// AddWater handles POST /api/v1/water
func (h *RecordsHandler) AddWater(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	var entry api.WaterLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDate(entry.Date); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if entry.Milliliters <= 0 {
		sendError(h.logger, w, "milliliters must be positive", http.StatusBadRequest)
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	payload, err := json.Marshal(&entry)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to marshal water entry", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.records.UpsertRecord(r.Context(), &models.StoredRecord{
		ID:        entry.ID,
		DeviceID:  deviceID,
		Type:      models.RecordTypeWater,
		Date:      entry.Date,
		Payload:   payload,
		UpdatedAt: entry.UpdatedAt,
	}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save water entry", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, entry, http.StatusCreated)
}

// DeleteWater handles DELETE /api/v1/water/{id}
func (h *RecordsHandler) DeleteWater(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "water entry")
}

func (h *RecordsHandler) deviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceID, ok := GetDeviceID(r.Context())
	if !ok {
		h.logger.Error("device id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return deviceID, true
}

func (h *RecordsHandler) listScope(w http.ResponseWriter, r *http.Request) (deviceID, date string, ok bool) {
	deviceID, ok = h.deviceID(w, r)
	if !ok {
		return "", "", false
	}

	date = r.URL.Query().Get("date")
	if err := validation.ValidateDate(date); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	return deviceID, date, true
}

func (h *RecordsHandler) decodeMeal(w http.ResponseWriter, r *http.Request) (*api.Meal, bool) {
	var meal api.Meal
	if err := json.NewDecoder(r.Body).Decode(&meal); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if err := validateMeal(&meal); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if meal.UpdatedAt.IsZero() {
		meal.UpdatedAt = time.Now()
	}
	return &meal, true
}

func (h *RecordsHandler) saveMeal(w http.ResponseWriter, r *http.Request, deviceID string, meal *api.Meal) bool {
	payload, err := json.Marshal(meal)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to marshal meal", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return false
	}

	if err := h.records.UpsertRecord(r.Context(), &models.StoredRecord{
		ID:        meal.ID,
		DeviceID:  deviceID,
		Type:      models.RecordTypeMeal,
		Date:      meal.Date,
		Payload:   payload,
		UpdatedAt: meal.UpdatedAt,
	}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save meal", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *RecordsHandler) deleteRecord(w http.ResponseWriter, r *http.Request, kind string) {
	deviceID, ok := h.deviceID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.records.DeleteRecord(r.Context(), deviceID, id); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			sendError(h.logger, w, kind+" not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete record", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateMeal(meal *api.Meal) error {
	if meal.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := validation.ValidateDate(meal.Date); err != nil {
		return err
	}
	if meal.Calories <= 0 {
		return fmt.Errorf("calories must be positive")
	}
	if meal.Protein < 0 || meal.Carbs < 0 || meal.Fat < 0 {
		return fmt.Errorf("macros cannot be negative")
	}
	return nil
}
