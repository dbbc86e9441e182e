package storage

import (
	"context"

	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/pkg/api"
)

// RecordStorage defines persistence for synchronized records. Records keep
// their client-generated IDs; writes are upserts so an offline client can
// retry an upload without duplicating the entry.
type RecordStorage interface {
	// UpsertRecord creates or overwrites a record, scoped to its device
	UpsertRecord(ctx context.Context, record *models.StoredRecord) error

	// GetRecord retrieves one record owned by the device
	// Returns ErrRecordNotFound if it doesn't exist
	GetRecord(ctx context.Context, deviceID, id string) (*models.StoredRecord, error)

	// ListRecords returns the device's records of one type for one day,
	// ordered by update time
	ListRecords(ctx context.Context, deviceID string, recordType models.RecordType, date string) ([]*models.StoredRecord, error)

	// ListRecordsInRange returns the device's records of one type with
	// dates in [from, to], both inclusive
	ListRecordsInRange(ctx context.Context, deviceID string, recordType models.RecordType, from, to string) ([]*models.StoredRecord, error)

	// DeleteRecord removes a record owned by the device
	// Returns ErrRecordNotFound if it doesn't exist
	DeleteRecord(ctx context.Context, deviceID, id string) error
}

// ProfileStorage defines persistence for per-device profiles.
type ProfileStorage interface {
	// GetProfile retrieves the device's profile
	// Returns ErrProfileNotFound if the device never saved one
	GetProfile(ctx context.Context, deviceID string) (*api.Profile, error)

	// SaveProfile creates or overwrites the device's profile
	SaveProfile(ctx context.Context, deviceID string, profile *api.Profile) error
}
