package storage

import (
	"context"

	"github.com/vitalog/vitalog/internal/models"
)

// TokenStorage defines persistence for refresh tokens. Every exchange
// rotates the device's tokens: old ones are dropped, the new pair is saved.
type TokenStorage interface {
	// SaveRefreshToken persists a refresh token
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves a refresh token by its value
	// Returns ErrTokenNotFound if the token doesn't exist
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteDeviceTokens removes all refresh tokens for a device and
	// returns how many were removed
	DeleteDeviceTokens(ctx context.Context, deviceID string) (int, error)

	// DeleteExpiredTokens removes refresh tokens past their expiry
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
