package storage

import (
	"context"

	"github.com/vitalog/vitalog/internal/models"
)

// RecordScope bounds a record query to one type and one calendar day,
// mirroring the server's listing endpoints.
type RecordScope struct {
	Type models.RecordType
	Date string
}

// RecordStorage defines the local persistent store for synchronized
// records. The store survives process restart.
type RecordStorage interface {
	// SaveRecord stores or overwrites a record
	SaveRecord(ctx context.Context, record *models.Record) error

	// GetRecord retrieves a record by ID regardless of its flags
	// Returns ErrRecordNotFound if the record doesn't exist
	GetRecord(ctx context.Context, id string) (*models.Record, error)

	// ListRecords returns every record in scope, including records that
	// are pending deletion. Reconciliation needs the full set.
	ListRecords(ctx context.Context, scope RecordScope) ([]*models.Record, error)

	// ListVisibleRecords returns records in scope excluding those pending
	// deletion. This is the user-facing listing.
	ListVisibleRecords(ctx context.Context, scope RecordScope) ([]*models.Record, error)

	// ListUnsynced returns records of the given type not yet acknowledged
	// by the server and not pending deletion (for upload).
	ListUnsynced(ctx context.Context, recordType models.RecordType) ([]*models.Record, error)

	// DeleteRecord physically removes a record
	DeleteRecord(ctx context.Context, id string) error

	// ApplyMerge applies a reconciliation plan in a single write
	// transaction: every upsert is written and every listed ID is removed,
	// or nothing is. No partial state is observable by other readers.
	ApplyMerge(ctx context.Context, scope RecordScope, upserts []*models.Record, deleteIDs []string) error
}
