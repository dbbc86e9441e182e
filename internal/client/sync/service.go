package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	httpapi "github.com/vitalog/vitalog/internal/client/api"
	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI is the slice of the request executor the reconciler needs.
type ClientAPI interface {
	Do(ctx context.Context, ep httpapi.Endpoint, body, result any) error
}

// Service reconciles the local record store with the server. Pulls merge
// server state into local storage without clobbering unsynced local work;
// pushes upload local records the server has not acknowledged yet.
type Service struct {
	api     ClientAPI
	records storage.RecordStorage
	logger  *slog.Logger
}

func NewService(apiClient ClientAPI, records storage.RecordStorage, logger *slog.Logger) *Service {
	return &Service{
		api:     apiClient,
		records: records,
		logger:  logger,
	}
}

// Result summarizes one reconciliation pass.
type Result struct {
	Pushed   int // local records uploaded and acknowledged
	Skipped  int // local records whose upload failed, left unsynced
	Pulled   int // records received from the server
	Upserted int // server records written into local storage
	Deleted  int // synced local records removed because the server dropped them
}

func (r *Result) add(other *Result) {
	r.Pushed += other.Pushed
	r.Skipped += other.Skipped
	r.Pulled += other.Pulled
	r.Upserted += other.Upserted
	r.Deleted += other.Deleted
}

// Sync performs a full pass for one calendar day: push pending uploads
// first so the subsequent pull reflects them, then pull both record types.
func (s *Service) Sync(ctx context.Context, date string) (*Result, error) {
	s.logger.Info("starting sync", "date", date)

	result, err := s.PushPending(ctx)
	if err != nil {
		return nil, err
	}

	mealResult, err := s.RefreshMeals(ctx, date)
	if err != nil {
		return nil, err
	}
	result.add(mealResult)

	waterResult, err := s.RefreshWater(ctx, date)
	if err != nil {
		return nil, err
	}
	result.add(waterResult)

	s.logger.Info("sync completed",
		"pushed", result.Pushed,
		"skipped", result.Skipped,
		"pulled", result.Pulled,
		"upserted", result.Upserted,
		"deleted", result.Deleted)

	return result, nil
}

// RefreshMeals pulls the server's meal list for the day and merges it into
// local storage. A failed fetch is not an error: the local state stays
// untouched and the caller keeps serving it.
func (s *Service) RefreshMeals(ctx context.Context, date string) (*Result, error) {
	var remote []api.Meal
	if err := s.api.Do(ctx, httpapi.ListMeals(date), nil, &remote); err != nil {
		s.logger.Warn("meal fetch failed, keeping local state", "date", date, "error", err)
		return &Result{}, nil
	}

	records := make([]*models.Record, 0, len(remote))
	for i := range remote {
		record, err := mealRecord(&remote[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return s.merge(ctx, storage.RecordScope{Type: models.RecordTypeMeal, Date: date}, records)
}

// RefreshWater pulls the server's water log for the day and merges it into
// local storage, with the same offline tolerance as RefreshMeals.
func (s *Service) RefreshWater(ctx context.Context, date string) (*Result, error) {
	var remote []api.WaterLog
	if err := s.api.Do(ctx, httpapi.ListWater(date), nil, &remote); err != nil {
		s.logger.Warn("water fetch failed, keeping local state", "date", date, "error", err)
		return &Result{}, nil
	}

	records := make([]*models.Record, 0, len(remote))
	for i := range remote {
		record, err := waterRecord(&remote[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return s.merge(ctx, storage.RecordScope{Type: models.RecordTypeWater, Date: date}, records)
}

// PushPending uploads every record the server has not acknowledged, across
// both record types. Each success flips the record to synced; each failure
// is logged and the record stays pending for the next pass.
func (s *Service) PushPending(ctx context.Context) (*Result, error) {
	result := &Result{}
	for _, recordType := range []models.RecordType{models.RecordTypeMeal, models.RecordTypeWater} {
		pending, err := s.records.ListUnsynced(ctx, recordType)
		if err != nil {
			return nil, fmt.Errorf("failed to list unsynced records: %w", err)
		}

		for _, record := range pending {
			if err := s.push(ctx, record); err != nil {
				s.logger.Warn("push failed, record stays pending",
					"record_id", record.ID,
					"type", record.Type,
					"error", err)
				result.Skipped++
				continue
			}

			record.Synced = true
			if err := s.records.SaveRecord(ctx, record); err != nil {
				return nil, fmt.Errorf("failed to mark record synced: %w", err)
			}
			result.Pushed++
		}
	}
	return result, nil
}

func (s *Service) push(ctx context.Context, record *models.Record) error {
	var ep httpapi.Endpoint
	switch record.Type {
	case models.RecordTypeMeal:
		ep = httpapi.CreateMeal()
	case models.RecordTypeWater:
		ep = httpapi.AddWater()
	default:
		return fmt.Errorf("unknown record type %q", record.Type)
	}
	// the payload carries the client-assigned ID; the server upserts by it
	return s.api.Do(ctx, ep, record.Payload, nil)
}

func (s *Service) merge(ctx context.Context, scope storage.RecordScope, remote []*models.Record) (*Result, error) {
	local, err := s.records.ListRecords(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list local records: %w", err)
	}

	upserts, deleteIDs := mergePlan(local, remote)

	if err := s.records.ApplyMerge(ctx, scope, upserts, deleteIDs); err != nil {
		return nil, fmt.Errorf("failed to apply merge: %w", err)
	}

	s.logger.Debug("merged remote records",
		"type", scope.Type,
		"date", scope.Date,
		"pulled", len(remote),
		"upserted", len(upserts),
		"deleted", len(deleteIDs))

	return &Result{
		Pulled:   len(remote),
		Upserted: len(upserts),
		Deleted:  len(deleteIDs),
	}, nil
}

// mergePlan computes the reconciliation of one scope. The server is the
// authority for records the client has fully synced; everything the client
// still owns locally is protected:
//
//   - a remote record overwrites its local copy only when that copy is
//     synced and not pending deletion; otherwise the local copy wins
//   - a synced local record missing from the remote set was deleted
//     elsewhere and is removed, unless it is pending deletion here
//   - unsynced local records are never touched by a pull
func mergePlan(local, remote []*models.Record) (upserts []*models.Record, deleteIDs []string) {
	localByID := make(map[string]*models.Record, len(local))
	for _, record := range local {
		localByID[record.ID] = record
	}

	remoteIDs := make(map[string]struct{}, len(remote))
	for _, record := range remote {
		remoteIDs[record.ID] = struct{}{}

		existing, ok := localByID[record.ID]
		if !ok || (existing.Synced && !existing.PendingDeletion) {
			upserts = append(upserts, record)
		}
	}

	for _, record := range local {
		if _, ok := remoteIDs[record.ID]; ok {
			continue
		}
		if record.Synced && !record.PendingDeletion {
			deleteIDs = append(deleteIDs, record.ID)
		}
	}

	return upserts, deleteIDs
}

func mealRecord(meal *api.Meal) (*models.Record, error) {
	payload, err := json.Marshal(meal)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal %s: %w", meal.ID, err)
	}
	return models.NewRemoteRecord(meal.ID, models.RecordTypeMeal, meal.Date, payload, meal.UpdatedAt), nil
}

func waterRecord(log *api.WaterLog) (*models.Record, error) {
	payload, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal water log %s: %w", log.ID, err)
	}
	return models.NewRemoteRecord(log.ID, models.RecordTypeWater, log.Date, payload, log.UpdatedAt), nil
}
