package storage

import (
	"context"
	"time"

	"github.com/vitalog/vitalog/internal/models"
)

// DeviceStorage defines persistence for device identities.
type DeviceStorage interface {
	// CreateDevice provisions a device row. Creating an existing device is
	// not an error: exchanges are idempotent.
	CreateDevice(ctx context.Context, device *models.Device) error

	// GetDevice retrieves a device by ID
	// Returns ErrDeviceNotFound if the device was never provisioned
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)

	// UpdateLastSeen records the time of the device's latest exchange
	UpdateLastSeen(ctx context.Context, deviceID string, lastSeen time.Time) error
}
