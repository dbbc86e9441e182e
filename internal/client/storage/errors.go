package storage

import "errors"

// Common client storage errors
var (
	// ErrCredentialsNotFound indicates that no credential pair is stored
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrDeviceIDNotFound indicates that no device identity is stored yet
	ErrDeviceIDNotFound = errors.New("device identity not found")

	// ErrRecordNotFound indicates that the record does not exist locally
	ErrRecordNotFound = errors.New("record not found")
)
