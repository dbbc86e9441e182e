package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/internal/server/storage"
	"github.com/vitalog/vitalog/internal/validation"
	"github.com/vitalog/vitalog/pkg/api"
)

// StatsHandler serves daily aggregates over week and month windows.
type StatsHandler struct {
	logger  *slog.Logger
	records storage.RecordStorage
}

func NewStatsHandler(logger *slog.Logger, records storage.RecordStorage) *StatsHandler {
	return &StatsHandler{
		logger:  logger,
		records: records,
	}
}

// Weekly handles GET /api/v1/stats/weekly?start=YYYY-MM-DD, covering the
// seven days from start.
func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	if err := validation.ValidateDate(startStr); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	start, _ := time.Parse(validation.DateLayout, startStr)
	h.aggregate(w, r, start, start.AddDate(0, 0, 6))
}

// Monthly handles GET /api/v1/stats/monthly?month=YYYY-MM, covering every
// day of the month.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	monthStr := r.URL.Query().Get("month")
	first, err := time.Parse("2006-01", monthStr)
	if err != nil {
		sendError(h.logger, w, "month must be in YYYY-MM format", http.StatusBadRequest)
		return
	}

	last := first.AddDate(0, 1, -1)
	h.aggregate(w, r, first, last)
}

func (h *StatsHandler) aggregate(w http.ResponseWriter, r *http.Request, from, to time.Time) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	fromStr := from.Format(validation.DateLayout)
	toStr := to.Format(validation.DateLayout)

	meals, err := h.records.ListRecordsInRange(ctx, deviceID, models.RecordTypeMeal, fromStr, toStr)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list meals for stats", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	water, err := h.records.ListRecordsInRange(ctx, deviceID, models.RecordTypeWater, fromStr, toStr)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list water for stats", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	byDate := make(map[string]*api.DayStats)
	var days []api.DayStats
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		days = append(days, api.DayStats{Date: day.Format(validation.DateLayout)})
	}
	for i := range days {
		byDate[days[i].Date] = &days[i]
	}

	for _, record := range meals {
		day, ok := byDate[record.Date]
		if !ok {
			continue
		}
		var meal api.Meal
		if err := json.Unmarshal(record.Payload, &meal); err != nil {
			h.logger.WarnContext(ctx, "corrupt meal payload", slog.String("record_id", record.ID))
			continue
		}
		day.Meals++
		day.Calories += meal.Calories
	}

	for _, record := range water {
		day, ok := byDate[record.Date]
		if !ok {
			continue
		}
		var entry api.WaterLog
		if err := json.Unmarshal(record.Payload, &entry); err != nil {
			h.logger.WarnContext(ctx, "corrupt water payload", slog.String("record_id", record.ID))
			continue
		}
		day.Milliliters += entry.Milliliters
	}

	sendJSON(h.logger, w, api.StatsResponse{Days: days}, http.StatusOK)
}
