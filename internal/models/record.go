package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RecordType identifies the kind of synchronized record.
type RecordType string

const (
	RecordTypeMeal  RecordType = "meal"
	RecordTypeWater RecordType = "water"
)

// Record is the client-side synchronized entity. Payload holds the wire
// shape of the domain object (api.Meal or api.WaterLog); the two flags are
// the coordination protocol between reconciliation and optimistic deletion:
//
//   - Synced is false for local mutations the server has not acknowledged;
//     a remote merge must never overwrite such a record.
//   - PendingDeletion is true while a soft delete awaits its grace window;
//     the record is hidden from listings but still physically present.
type Record struct {
	ID              string          `json:"id"`
	Type            RecordType      `json:"type"`
	Date            string          `json:"date"`
	Payload         json.RawMessage `json:"payload"`
	Synced          bool            `json:"synced"`
	PendingDeletion bool            `json:"pending_deletion"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewLocalRecord creates an optimistic, not-yet-uploaded record with a
// client-generated identifier. Record IDs live in a single namespace shared
// with the server, so the ID assigned here is final.
func NewLocalRecord(recordType RecordType, date string, payload json.RawMessage) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Type:      recordType,
		Date:      date,
		Payload:   payload,
		Synced:    false,
		UpdatedAt: time.Now(),
	}
}

// NewRemoteRecord wraps a server-reported payload as an already-synced
// local record.
func NewRemoteRecord(id string, recordType RecordType, date string, payload json.RawMessage, updatedAt time.Time) *Record {
	return &Record{
		ID:        id,
		Type:      recordType,
		Date:      date,
		Payload:   payload,
		Synced:    true,
		UpdatedAt: updatedAt,
	}
}
