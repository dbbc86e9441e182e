package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalog/vitalog/internal/server/storage"
	"github.com/vitalog/vitalog/pkg/api"
)

// Default daily goals served until a device saves its own profile.
const (
	defaultCalorieGoal = 2000
	defaultWaterGoalML = 2000
)

// ProfileHandler serves the per-device profile endpoints.
type ProfileHandler struct {
	logger   *slog.Logger
	profiles storage.ProfileStorage
}

func NewProfileHandler(logger *slog.Logger, profiles storage.ProfileStorage) *ProfileHandler {
	return &ProfileHandler{
		logger:   logger,
		profiles: profiles,
	}
}

// Get handles GET /api/v1/profile. A device that never saved a profile
// gets the defaults, not a 404: the client always has goals to render.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.profiles.GetProfile(ctx, deviceID)
	if errors.Is(err, storage.ErrProfileNotFound) {
		profile = &api.Profile{
			DailyCalorieGoal: defaultCalorieGoal,
			DailyWaterGoalML: defaultWaterGoalML,
		}
	} else if err != nil {
		h.logger.ErrorContext(ctx, "failed to get profile", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, profile, http.StatusOK)
}

// Update handles PUT /api/v1/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var profile api.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if profile.DailyCalorieGoal < 0 || profile.DailyWaterGoalML < 0 {
		sendError(h.logger, w, "goals cannot be negative", http.StatusBadRequest)
		return
	}
	profile.UpdatedAt = time.Now()

	if err := h.profiles.SaveProfile(ctx, deviceID, &profile); err != nil {
		h.logger.ErrorContext(ctx, "failed to save profile", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, profile, http.StatusOK)
}
