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

// CreateDevice provisions a device row. Re-provisioning an existing device
// is a no-op so exchanges stay idempotent.
func (s *Storage) CreateDevice(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (id, created_at, last_seen)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		device.ID,
		device.CreatedAt.Unix(),
		device.LastSeen.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

// GetDevice retrieves a device by ID
func (s *Storage) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	query := `SELECT id, created_at, last_seen FROM devices WHERE id = ?`

	var (
		device    models.Device
		createdAt int64
		lastSeen  int64
	)
	err := s.db.QueryRowContext(ctx, query, deviceID).Scan(&device.ID, &createdAt, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	device.CreatedAt = time.Unix(createdAt, 0)
	device.LastSeen = time.Unix(lastSeen, 0)
	return &device, nil
}

// UpdateLastSeen records the time of the device's latest exchange
func (s *Storage) UpdateLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error {
	query := `UPDATE devices SET last_seen = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), deviceID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrDeviceNotFound
	}

	return nil
}
