package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/internal/server/storage"
)

// SaveRefreshToken persists a refresh token
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, device_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.Token,
		token.DeviceID,
		token.CreatedAt.Unix(),
		token.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves a refresh token by its value
func (s *Storage) GetRefreshToken(ctx context.Context, tokenValue string) (*models.RefreshToken, error) {
	query := `
		SELECT token, device_id, created_at, expires_at
		FROM refresh_tokens WHERE token = ?
	`

	var (
		token     models.RefreshToken
		createdAt int64
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, query, tokenValue).Scan(
		&token.Token, &token.DeviceID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	token.CreatedAt = time.Unix(createdAt, 0)
	token.ExpiresAt = time.Unix(expiresAt, 0)
	return &token, nil
}

// DeleteDeviceTokens removes all refresh tokens for a device
func (s *Storage) DeleteDeviceTokens(ctx context.Context, deviceID string) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE device_id = ?`

	result, err := s.db.ExecContext(ctx, query, deviceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete device tokens: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(affected), nil
}

// DeleteExpiredTokens removes refresh tokens past their expiry
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < ?`

	result, err := s.db.ExecContext(ctx, query, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(affected), nil
}
