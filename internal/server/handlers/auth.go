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

// AuthHandler issues token pairs in exchange for a device identity.
type AuthHandler struct {
	logger        *slog.Logger
	deviceStorage storage.DeviceStorage
	tokenStorage  storage.TokenStorage
	jwtConfig     JWTConfig
}

func NewAuthHandler(logger *slog.Logger, deviceStorage storage.DeviceStorage, tokenStorage storage.TokenStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:        logger,
		deviceStorage: deviceStorage,
		tokenStorage:  tokenStorage,
		jwtConfig:     jwtConfig,
	}
}

// DeviceAuth handles POST /api/v1/auth/device.
// Unknown devices are provisioned on the spot; there is no separate
// registration step. Every exchange rotates the device's refresh tokens.
func (h *AuthHandler) DeviceAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.DeviceAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode device auth request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateDeviceID(req.DeviceID); err != nil {
		h.logger.WarnContext(ctx, "invalid device id", slog.String("device_id", req.DeviceID), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	device := &models.Device{
		ID:        req.DeviceID,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := h.deviceStorage.CreateDevice(ctx, device); err != nil {
		h.logger.ErrorContext(ctx, "failed to provision device", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.deviceStorage.UpdateLastSeen(ctx, req.DeviceID, now); err != nil {
		h.logger.WarnContext(ctx, "failed to update last seen", slog.Any("error", err))
	}

	// rotate: every exchange invalidates the previous refresh tokens
	if _, err := h.tokenStorage.DeleteDeviceTokens(ctx, req.DeviceID); err != nil {
		h.logger.ErrorContext(ctx, "failed to rotate tokens", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, req.DeviceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	refreshToken, refreshExpiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.tokenStorage.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		DeviceID:  req.DeviceID,
		CreatedAt: now,
		ExpiresAt: refreshExpiresAt,
	}); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "device authenticated", slog.String("device_id", req.DeviceID))

	sendJSON(h.logger, w, api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, http.StatusOK)
}
