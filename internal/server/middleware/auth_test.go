package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalog/vitalog/internal/server/handlers"
)

func testJWTConfig() handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := handlers.GenerateAccessToken(cfg, "device-1")
	require.NoError(t, err)

	var gotDeviceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDeviceID, _ = handlers.GetDeviceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(discardLogger(), cfg)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "device-1", gotDeviceID)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	handler := AuthMiddleware(discardLogger(), testJWTConfig())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meals", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	handler := AuthMiddleware(discardLogger(), testJWTConfig())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meals", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := testJWTConfig()
	expired.AccessTokenTTL = -time.Minute

	token, _, err := handlers.GenerateAccessToken(expired, "device-1")
	require.NoError(t, err)

	handler := AuthMiddleware(discardLogger(), testJWTConfig())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	other := testJWTConfig()
	other.Secret = []byte("another-secret")

	token, _, err := handlers.GenerateAccessToken(other, "device-1")
	require.NoError(t, err)

	handler := AuthMiddleware(discardLogger(), testJWTConfig())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
