package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/internal/server/storage/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func newTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func provisionDevice(t *testing.T, store *sqlite.Storage, deviceID string) {
	t.Helper()

	now := time.Now()
	err := store.CreateDevice(context.Background(), &models.Device{
		ID:        deviceID,
		CreatedAt: now,
		LastSeen:  now,
	})
	require.NoError(t, err)
}

// asDevice injects an authenticated device identity the way the auth
// middleware does.
func asDevice(r *http.Request, deviceID string) *http.Request {
	ctx := context.WithValue(r.Context(), DeviceIDKey, deviceID)
	return r.WithContext(ctx)
}
