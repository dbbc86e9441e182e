package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/models"
)

// Records are keyed by ID; type and date live inside the JSON value and
// scope queries scan the bucket. The store holds one device's data, so the
// scan stays small.

// SaveRecord stores or overwrites a record
func (s *Storage) SaveRecord(ctx context.Context, record *models.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putRecord(tx, record)
	})
}

// GetRecord retrieves a record by ID
func (s *Storage) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	var record *models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		record = &models.Record{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal record %s: %w", id, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}

// ListRecords returns every record in scope, including hidden ones
func (s *Storage) ListRecords(ctx context.Context, scope storage.RecordScope) ([]*models.Record, error) {
	return s.listRecords(func(r *models.Record) bool {
		return r.Type == scope.Type && r.Date == scope.Date
	})
}

// ListVisibleRecords returns records in scope excluding pending deletions
func (s *Storage) ListVisibleRecords(ctx context.Context, scope storage.RecordScope) ([]*models.Record, error) {
	return s.listRecords(func(r *models.Record) bool {
		return r.Type == scope.Type && r.Date == scope.Date && !r.PendingDeletion
	})
}

// ListUnsynced returns not-yet-uploaded records of one type
func (s *Storage) ListUnsynced(ctx context.Context, recordType models.RecordType) ([]*models.Record, error) {
	return s.listRecords(func(r *models.Record) bool {
		return r.Type == recordType && !r.Synced && !r.PendingDeletion
	})
}

// DeleteRecord physically removes a record. Removing an absent record is
// not an error.
func (s *Storage) DeleteRecord(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		if err := bucket.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", id, err)
		}

		return nil
	})
}

// ApplyMerge writes all upserts and removes all listed IDs in one write
// transaction, so readers never observe a half-applied merge.
func (s *Storage) ApplyMerge(ctx context.Context, scope storage.RecordScope, upserts []*models.Record, deleteIDs []string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		for _, record := range upserts {
			if err := putRecord(tx, record); err != nil {
				return err
			}
		}

		for _, id := range deleteIDs {
			if err := bucket.Delete([]byte(id)); err != nil {
				return fmt.Errorf("failed to delete record %s: %w", id, err)
			}
		}

		return nil
	})
}

func putRecord(tx *bbolt.Tx, record *models.Record) error {
	bucket := tx.Bucket(bucketRecords)
	if bucket == nil {
		return fmt.Errorf("records bucket not found")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", record.ID, err)
	}

	if err := bucket.Put([]byte(record.ID), data); err != nil {
		return fmt.Errorf("failed to save record %s: %w", record.ID, err)
	}

	return nil
}

func (s *Storage) listRecords(match func(*models.Record) bool) ([]*models.Record, error) {
	var records []*models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			record := &models.Record{}
			if err := json.Unmarshal(v, record); err != nil {
				return fmt.Errorf("failed to unmarshal record %s: %w", k, err)
			}
			if match(record) {
				records = append(records, record)
			}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	// stable listing order for callers and tests
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.Before(records[j].UpdatedAt)
	})

	return records, nil
}
