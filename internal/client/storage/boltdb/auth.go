package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/vitalog/vitalog/internal/client/storage"
)

var (
	credentialsKey = []byte("credentials")
	deviceIDKey    = []byte("device_id")
)

// SaveCredentials stores the credential pair, replacing any prior pair.
// bbolt's Put within Update gives the atomic overwrite.
func (s *Storage) SaveCredentials(ctx context.Context, creds *storage.Credentials) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		data, err := json.Marshal(creds)
		if err != nil {
			return fmt.Errorf("failed to marshal credentials: %w", err)
		}

		if err := bucket.Put(credentialsKey, data); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		return nil
	})
}

// GetCredentials retrieves the stored credential pair
func (s *Storage) GetCredentials(ctx context.Context) (*storage.Credentials, error) {
	var creds *storage.Credentials

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		data := bucket.Get(credentialsKey)
		if data == nil {
			return storage.ErrCredentialsNotFound
		}

		creds = &storage.Credentials{}
		if err := json.Unmarshal(data, creds); err != nil {
			return fmt.Errorf("failed to unmarshal credentials: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return creds, nil
}

// DeleteCredentials removes the stored credential pair. Deleting an absent
// pair is not an error; the operation is idempotent.
func (s *Storage) DeleteCredentials(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		if err := bucket.Delete(credentialsKey); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}

		return nil
	})
}

// SaveDeviceID stores the installation identity
func (s *Storage) SaveDeviceID(ctx context.Context, deviceID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		if err := bucket.Put(deviceIDKey, []byte(deviceID)); err != nil {
			return fmt.Errorf("failed to save device id: %w", err)
		}

		return nil
	})
}

// GetDeviceID retrieves the installation identity
func (s *Storage) GetDeviceID(ctx context.Context) (string, error) {
	var deviceID string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		data := bucket.Get(deviceIDKey)
		if data == nil {
			return storage.ErrDeviceIDNotFound
		}

		deviceID = string(data)
		return nil
	})

	if err != nil {
		return "", err
	}

	return deviceID, nil
}
