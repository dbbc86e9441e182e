package storage

import "errors"

// Common storage errors
var (
	// ErrDeviceNotFound indicates that the device was not provisioned
	ErrDeviceNotFound = errors.New("device not found")

	// ErrTokenNotFound indicates that the refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrRecordNotFound indicates that the record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrProfileNotFound indicates that the device has no stored profile yet
	ErrProfileNotFound = errors.New("profile not found")
)
