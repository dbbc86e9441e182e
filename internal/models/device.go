package models

import "time"

// Device is the server-side account row for one installation. Devices are
// auto-provisioned on first exchange; there is no separate registration.
type Device struct {
	ID        string    // client-generated installation UUID
	CreatedAt time.Time
	LastSeen  time.Time
}

// RefreshToken is a server-persisted refresh credential for a device.
type RefreshToken struct {
	Token     string
	DeviceID  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// StoredRecord is the server-side representation of a synchronized record.
// The ID is the client-generated UUID; the server never renumbers records.
type StoredRecord struct {
	ID        string
	DeviceID  string
	Type      RecordType
	Date      string
	Payload   []byte
	UpdatedAt time.Time
}
