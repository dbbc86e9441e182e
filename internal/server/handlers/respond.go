package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vitalog/vitalog/pkg/api"
)

// contextKey is the type for request context keys.
type contextKey string

// DeviceIDKey carries the authenticated device ID, set by the auth
// middleware.
const DeviceIDKey contextKey = "device_id"

// GetDeviceID extracts the authenticated device ID from the request
// context.
func GetDeviceID(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDKey).(string)
	return deviceID, ok
}

func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func sendError(logger *slog.Logger, w http.ResponseWriter, detail string, statusCode int) {
	resp := api.ErrorResponse{
		Error:  http.StatusText(statusCode),
		Detail: detail,
	}
	sendJSON(logger, w, resp, statusCode)
}
