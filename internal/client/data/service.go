package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	httpapi "github.com/vitalog/vitalog/internal/client/api"
	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/client/sync"
	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/internal/validation"
	"github.com/vitalog/vitalog/pkg/api"
)

// ClientAPI is the slice of the request executor the facade needs.
type ClientAPI interface {
	Do(ctx context.Context, ep httpapi.Endpoint, body, result any) error
	Upload(ctx context.Context, ep httpapi.Endpoint, fieldName, fileName string, content []byte, result any) error
}

// Refresher pulls server state into local storage before a listing.
type Refresher interface {
	RefreshMeals(ctx context.Context, date string) (*sync.Result, error)
	RefreshWater(ctx context.Context, date string) (*sync.Result, error)
}

// Deleter runs the optimistic soft-delete lifecycle.
type Deleter interface {
	SoftDelete(ctx context.Context, record *models.Record) error
	Undo(ctx context.Context) (*models.Record, error)
}

// Service is the typed entry point the CLI talks to. Writes are optimistic:
// a new entry lands in local storage first and is visible immediately; the
// upload happens in the same call when the server is reachable and is left
// to the next sync pass when it is not.
type Service struct {
	api       ClientAPI
	records   storage.RecordStorage
	refresher Refresher
	deleter   Deleter
	logger    *slog.Logger
}

func NewService(apiClient ClientAPI, records storage.RecordStorage, refresher Refresher, deleter Deleter, logger *slog.Logger) *Service {
	return &Service{
		api:       apiClient,
		records:   records,
		refresher: refresher,
		deleter:   deleter,
		logger:    logger,
	}
}

// AddMeal stores a meal locally and attempts the upload. The meal gets a
// client-assigned ID; the server upserts by it, so a retried upload after
// an offline period cannot duplicate the entry.
func (s *Service) AddMeal(ctx context.Context, meal *api.Meal) error {
	if err := validation.ValidateDate(meal.Date); err != nil {
		return err
	}
	if meal.ID == "" {
		meal.ID = uuid.New().String()
	}
	meal.UpdatedAt = time.Now()

	record, err := localRecord(meal.ID, models.RecordTypeMeal, meal.Date, meal)
	if err != nil {
		return err
	}
	if err := s.records.SaveRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save meal: %w", err)
	}

	s.uploadRecord(ctx, record, httpapi.CreateMeal())
	return nil
}

// Meals returns the visible meal list for a day: a pull refreshes local
// storage when the server is reachable, then local storage serves the list.
func (s *Service) Meals(ctx context.Context, date string) ([]api.Meal, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}
	if _, err := s.refresher.RefreshMeals(ctx, date); err != nil {
		return nil, err
	}

	records, err := s.records.ListVisibleRecords(ctx, storage.RecordScope{
		Type: models.RecordTypeMeal,
		Date: date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	meals := make([]api.Meal, 0, len(records))
	for _, record := range records {
		var meal api.Meal
		if err := json.Unmarshal(record.Payload, &meal); err != nil {
			return nil, fmt.Errorf("corrupt meal record %s: %w", record.ID, err)
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

// DeleteMeal hides the meal immediately and schedules the confirmed
// deletion. Undo within the grace window brings it back.
func (s *Service) DeleteMeal(ctx context.Context, id string) error {
	return s.softDelete(ctx, id, models.RecordTypeMeal)
}

// AddWater stores a water entry locally and attempts the upload.
func (s *Service) AddWater(ctx context.Context, log *api.WaterLog) error {
	if err := validation.ValidateDate(log.Date); err != nil {
		return err
	}
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.UpdatedAt = time.Now()

	record, err := localRecord(log.ID, models.RecordTypeWater, log.Date, log)
	if err != nil {
		return err
	}
	if err := s.records.SaveRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save water entry: %w", err)
	}

	s.uploadRecord(ctx, record, httpapi.AddWater())
	return nil
}

// Water returns the visible water log for a day.
func (s *Service) Water(ctx context.Context, date string) ([]api.WaterLog, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}
	if _, err := s.refresher.RefreshWater(ctx, date); err != nil {
		return nil, err
	}

	records, err := s.records.ListVisibleRecords(ctx, storage.RecordScope{
		Type: models.RecordTypeWater,
		Date: date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list water entries: %w", err)
	}

	logs := make([]api.WaterLog, 0, len(records))
	for _, record := range records {
		var entry api.WaterLog
		if err := json.Unmarshal(record.Payload, &entry); err != nil {
			return nil, fmt.Errorf("corrupt water record %s: %w", record.ID, err)
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// DeleteWater hides the water entry and schedules the confirmed deletion.
func (s *Service) DeleteWater(ctx context.Context, id string) error {
	return s.softDelete(ctx, id, models.RecordTypeWater)
}

// Undo cancels the most recent deletion still inside its grace window.
func (s *Service) Undo(ctx context.Context) (*models.Record, error) {
	return s.deleter.Undo(ctx)
}

// Profile fetches the profile; within the cache TTL no request is made.
func (s *Service) Profile(ctx context.Context) (*api.Profile, error) {
	var profile api.Profile
	if err := s.api.Do(ctx, httpapi.GetProfile(), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile writes the profile through to the server.
func (s *Service) UpdateProfile(ctx context.Context, profile *api.Profile) error {
	return s.api.Do(ctx, httpapi.UpdateProfile(), profile, profile)
}

// WeeklyStats returns the aggregate for the week starting at the given day.
func (s *Service) WeeklyStats(ctx context.Context, start string) (*api.StatsResponse, error) {
	if err := validation.ValidateDate(start); err != nil {
		return nil, err
	}
	var stats api.StatsResponse
	if err := s.api.Do(ctx, httpapi.WeeklyStats(start), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// MonthlyStats returns the aggregate for a YYYY-MM month.
func (s *Service) MonthlyStats(ctx context.Context, month string) (*api.StatsResponse, error) {
	var stats api.StatsResponse
	if err := s.api.Do(ctx, httpapi.MonthlyStats(month), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// UploadMealPhoto attaches a photo to an existing meal and writes the
// returned URL back into the local record.
func (s *Service) UploadMealPhoto(ctx context.Context, mealID, fileName string, content []byte) (string, error) {
	record, err := s.records.GetRecord(ctx, mealID)
	if err != nil {
		return "", fmt.Errorf("failed to get meal %s: %w", mealID, err)
	}
	if record.Type != models.RecordTypeMeal {
		return "", fmt.Errorf("record %s is not a meal", mealID)
	}

	var resp api.UploadResponse
	if err := s.api.Upload(ctx, httpapi.UploadMealPhoto(mealID), "photo", fileName, content, &resp); err != nil {
		return "", err
	}

	var meal api.Meal
	if err := json.Unmarshal(record.Payload, &meal); err != nil {
		return "", fmt.Errorf("corrupt meal record %s: %w", mealID, err)
	}
	meal.PhotoURL = resp.PhotoURL
	meal.UpdatedAt = time.Now()

	payload, err := json.Marshal(&meal)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meal: %w", err)
	}
	record.Payload = payload
	record.UpdatedAt = meal.UpdatedAt
	if err := s.records.SaveRecord(ctx, record); err != nil {
		return "", fmt.Errorf("failed to save meal: %w", err)
	}

	return resp.PhotoURL, nil
}

func (s *Service) softDelete(ctx context.Context, id string, recordType models.RecordType) error {
	record, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get record %s: %w", id, err)
	}
	if record.Type != recordType {
		return fmt.Errorf("record %s is a %s, not a %s", id, record.Type, recordType)
	}
	return s.deleter.SoftDelete(ctx, record)
}

// uploadRecord attempts the optimistic upload. Failure is not an error at
// this level: the record stays unsynced and the next sync pass retries it.
func (s *Service) uploadRecord(ctx context.Context, record *models.Record, ep httpapi.Endpoint) {
	if err := s.api.Do(ctx, ep, record.Payload, nil); err != nil {
		s.logger.Warn("upload failed, entry saved locally",
			"record_id", record.ID,
			"type", record.Type,
			"error", err)
		return
	}

	record.Synced = true
	if err := s.records.SaveRecord(ctx, record); err != nil {
		s.logger.Warn("failed to mark record synced", "record_id", record.ID, "error", err)
	}
}

func localRecord(id string, recordType models.RecordType, date string, payload any) (*models.Record, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", recordType, err)
	}
	return &models.Record{
		ID:        id,
		Type:      recordType,
		Date:      date,
		Payload:   raw,
		Synced:    false,
		UpdatedAt: time.Now(),
	}, nil
}
