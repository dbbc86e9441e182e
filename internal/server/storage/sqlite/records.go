package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/internal/server/storage"
	"github.com/vitalog/vitalog/pkg/api"
)

// UpsertRecord creates or overwrites a record, scoped to its device
func (s *Storage) UpsertRecord(ctx context.Context, record *models.StoredRecord) error {
	query := `
		INSERT INTO records (id, device_id, type, date, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id, id) DO UPDATE SET
			type = excluded.type,
			date = excluded.date,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.DeviceID,
		string(record.Type),
		record.Date,
		record.Payload,
		record.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	return nil
}

// GetRecord retrieves one record owned by the device
func (s *Storage) GetRecord(ctx context.Context, deviceID, id string) (*models.StoredRecord, error) {
	query := `
		SELECT id, device_id, type, date, payload, updated_at
		FROM records WHERE device_id = ? AND id = ?
	`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, deviceID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return record, nil
}

// ListRecords returns the device's records of one type for one day
func (s *Storage) ListRecords(ctx context.Context, deviceID string, recordType models.RecordType, date string) ([]*models.StoredRecord, error) {
	query := `
		SELECT id, device_id, type, date, payload, updated_at
		FROM records
		WHERE device_id = ? AND type = ? AND date = ?
		ORDER BY updated_at, id
	`

	return s.queryRecords(ctx, query, deviceID, string(recordType), date)
}

// ListRecordsInRange returns the device's records of one type with dates in
// [from, to]. Dates sort lexicographically in YYYY-MM-DD form, so this is a
// plain string range.
func (s *Storage) ListRecordsInRange(ctx context.Context, deviceID string, recordType models.RecordType, from, to string) ([]*models.StoredRecord, error) {
	query := `
		SELECT id, device_id, type, date, payload, updated_at
		FROM records
		WHERE device_id = ? AND type = ? AND date >= ? AND date <= ?
		ORDER BY date, updated_at, id
	`

	return s.queryRecords(ctx, query, deviceID, string(recordType), from, to)
}

// DeleteRecord removes a record owned by the device
func (s *Storage) DeleteRecord(ctx context.Context, deviceID, id string) error {
	query := `DELETE FROM records WHERE device_id = ? AND id = ?`

	result, err := s.db.ExecContext(ctx, query, deviceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrRecordNotFound
	}

	return nil
}

// GetProfile retrieves the device's profile
func (s *Storage) GetProfile(ctx context.Context, deviceID string) (*api.Profile, error) {
	query := `
		SELECT display_name, daily_calorie_goal, daily_water_goal_ml, updated_at
		FROM profiles WHERE device_id = ?
	`

	var (
		profile   api.Profile
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, deviceID).Scan(
		&profile.DisplayName,
		&profile.DailyCalorieGoal,
		&profile.DailyWaterGoalML,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.UpdatedAt = time.Unix(updatedAt, 0)
	return &profile, nil
}

// SaveProfile creates or overwrites the device's profile
func (s *Storage) SaveProfile(ctx context.Context, deviceID string, profile *api.Profile) error {
	query := `
		INSERT INTO profiles (device_id, display_name, daily_calorie_goal, daily_water_goal_ml, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			display_name = excluded.display_name,
			daily_calorie_goal = excluded.daily_calorie_goal,
			daily_water_goal_ml = excluded.daily_water_goal_ml,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		deviceID,
		profile.DisplayName,
		profile.DailyCalorieGoal,
		profile.DailyWaterGoalML,
		profile.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.StoredRecord, error) {
	var (
		record     models.StoredRecord
		recordType string
		updatedAt  int64
	)
	if err := row.Scan(&record.ID, &record.DeviceID, &recordType, &record.Date, &record.Payload, &updatedAt); err != nil {
		return nil, err
	}

	record.Type = models.RecordType(recordType)
	record.UpdatedAt = time.Unix(updatedAt, 0)
	return &record, nil
}

func (s *Storage) queryRecords(ctx context.Context, query string, args ...any) ([]*models.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*models.StoredRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}
