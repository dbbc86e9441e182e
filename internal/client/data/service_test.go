package data

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/vitalog/vitalog/internal/client/api"
	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/client/sync"
	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/pkg/api"
)

type ClientAPIMock struct {
	DoFunc     func(ctx context.Context, ep httpapi.Endpoint, body, result any) error
	UploadFunc func(ctx context.Context, ep httpapi.Endpoint, fieldName, fileName string, content []byte, result any) error
}

func (m *ClientAPIMock) Do(ctx context.Context, ep httpapi.Endpoint, body, result any) error {
	return m.DoFunc(ctx, ep, body, result)
}

func (m *ClientAPIMock) Upload(ctx context.Context, ep httpapi.Endpoint, fieldName, fileName string, content []byte, result any) error {
	return m.UploadFunc(ctx, ep, fieldName, fileName, content, result)
}

type refresherFake struct {
	mealCalls  int
	waterCalls int
}

func (f *refresherFake) RefreshMeals(ctx context.Context, date string) (*sync.Result, error) {
	f.mealCalls++
	return &sync.Result{}, nil
}

func (f *refresherFake) RefreshWater(ctx context.Context, date string) (*sync.Result, error) {
	f.waterCalls++
	return &sync.Result{}, nil
}

type deleterFake struct {
	softDeleted []*models.Record
	undoRecord  *models.Record
	undoErr     error
}

func (f *deleterFake) SoftDelete(ctx context.Context, record *models.Record) error {
	f.softDeleted = append(f.softDeleted, record)
	return nil
}

func (f *deleterFake) Undo(ctx context.Context) (*models.Record, error) {
	return f.undoRecord, f.undoErr
}

type recordStoreFake struct {
	records map[string]*models.Record
}

func newRecordStoreFake() *recordStoreFake {
	return &recordStoreFake{records: make(map[string]*models.Record)}
}

func (f *recordStoreFake) SaveRecord(ctx context.Context, record *models.Record) error {
	clone := *record
	f.records[record.ID] = &clone
	return nil
}

func (f *recordStoreFake) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *recordStoreFake) ListRecords(ctx context.Context, scope storage.RecordScope) ([]*models.Record, error) {
	var result []*models.Record
	for _, record := range f.records {
		if record.Type == scope.Type && record.Date == scope.Date {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *recordStoreFake) ListVisibleRecords(ctx context.Context, scope storage.RecordScope) ([]*models.Record, error) {
	all, _ := f.ListRecords(ctx, scope)
	var result []*models.Record
	for _, record := range all {
		if !record.PendingDeletion {
			result = append(result, record)
		}
	}
	return result, nil
}

func (f *recordStoreFake) ListUnsynced(ctx context.Context, recordType models.RecordType) ([]*models.Record, error) {
	return nil, nil
}

func (f *recordStoreFake) DeleteRecord(ctx context.Context, id string) error {
	delete(f.records, id)
	return nil
}

func (f *recordStoreFake) ApplyMerge(ctx context.Context, scope storage.RecordScope, upserts []*models.Record, deleteIDs []string) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(apiMock *ClientAPIMock) (*Service, *recordStoreFake, *refresherFake, *deleterFake) {
	store := newRecordStoreFake()
	refresher := &refresherFake{}
	deleter := &deleterFake{}
	return NewService(apiMock, store, refresher, deleter, testLogger()), store, refresher, deleter
}

func TestAddMeal_OnlineMarksSynced(t *testing.T) {
	apiMock := &ClientAPIMock{
		DoFunc: func(ctx context.Context, ep httpapi.Endpoint, body, result any) error {
			assert.Equal(t, "/api/v1/meals", ep.Path)
			return nil
		},
	}
	service, store, _, _ := newTestService(apiMock)

	meal := &api.Meal{Name: "oatmeal", Date: "2026-02-09", Calories: 320}
	require.NoError(t, service.AddMeal(context.Background(), meal))
	require.NotEmpty(t, meal.ID)

	record, err := store.GetRecord(context.Background(), meal.ID)
	require.NoError(t, err)
	assert.True(t, record.Synced)
}

func TestAddMeal_OfflineStaysLocal(t *testing.T) {
	apiMock := &ClientAPIMock{
		DoFunc: func(ctx context.Context, ep httpapi.Endpoint, body, result any) error {
			return &httpapi.Error{Kind: httpapi.KindTransport, Err: errors.New("no route to host")}
		},
	}
	service, store, _, _ := newTestService(apiMock)

	meal := &api.Meal{Name: "oatmeal", Date: "2026-02-09", Calories: 320}

	// the entry is accepted even though the upload failed
	require.NoError(t, service.AddMeal(context.Background(), meal))

	record, err := store.GetRecord(context.Background(), meal.ID)
	require.NoError(t, err)
	assert.False(t, record.Synced)

	var stored api.Meal
	require.NoError(t, json.Unmarshal(record.Payload, &stored))
	assert.Equal(t, "oatmeal", stored.Name)
}

func TestAddMeal_InvalidDate(t *testing.T) {
	service, store, _, _ := newTestService(&ClientAPIMock{})

	err := service.AddMeal(context.Background(), &api.Meal{Name: "x", Date: "02/09/2026"})
	require.Error(t, err)
	assert.Empty(t, store.records)
}

func TestMeals_RefreshesThenServesLocal(t *testing.T) {
	service, store, refresher, _ := newTestService(&ClientAPIMock{})
	ctx := context.Background()

	visible, err := json.Marshal(api.Meal{ID: "m1", Name: "salad", Date: "2026-02-09"})
	require.NoError(t, err)
	require.NoError(t, store.SaveRecord(ctx, &models.Record{
		ID: "m1", Type: models.RecordTypeMeal, Date: "2026-02-09", Payload: visible, Synced: true,
	}))
	require.NoError(t, store.SaveRecord(ctx, &models.Record{
		ID: "m2", Type: models.RecordTypeMeal, Date: "2026-02-09", Payload: visible,
		Synced: true, PendingDeletion: true,
	}))

	meals, err := service.Meals(ctx, "2026-02-09")

	require.NoError(t, err)
	assert.Equal(t, 1, refresher.mealCalls)
	require.Len(t, meals, 1)
	assert.Equal(t, "salad", meals[0].Name)
}

func TestDeleteMeal_DelegatesToDeleter(t *testing.T) {
	service, store, _, deleter := newTestService(&ClientAPIMock{})
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, &models.Record{
		ID: "m1", Type: models.RecordTypeMeal, Date: "2026-02-09",
		Payload: json.RawMessage(`{}`), Synced: true,
	}))

	require.NoError(t, service.DeleteMeal(ctx, "m1"))
	require.Len(t, deleter.softDeleted, 1)
	assert.Equal(t, "m1", deleter.softDeleted[0].ID)
}

func TestDeleteMeal_TypeMismatch(t *testing.T) {
	service, store, _, deleter := newTestService(&ClientAPIMock{})
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, &models.Record{
		ID: "w1", Type: models.RecordTypeWater, Date: "2026-02-09",
		Payload: json.RawMessage(`{}`),
	}))

	err := service.DeleteMeal(ctx, "w1")
	require.Error(t, err)
	assert.Empty(t, deleter.softDeleted)
}

func TestAddWater_Offline(t *testing.T) {
	apiMock := &ClientAPIMock{
		DoFunc: func(ctx context.Context, ep httpapi.Endpoint, body, result any) error {
			return &httpapi.Error{Kind: httpapi.KindTransport}
		},
	}
	service, store, _, _ := newTestService(apiMock)

	entry := &api.WaterLog{Date: "2026-02-09", Milliliters: 250}
	require.NoError(t, service.AddWater(context.Background(), entry))

	record, err := store.GetRecord(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.False(t, record.Synced)
	assert.Equal(t, models.RecordTypeWater, record.Type)
}

func TestUploadMealPhoto_UpdatesLocalRecord(t *testing.T) {
	apiMock := &ClientAPIMock{
		UploadFunc: func(ctx context.Context, ep httpapi.Endpoint, fieldName, fileName string, content []byte, result any) error {
			assert.Equal(t, "photo", fieldName)
			assert.Equal(t, "lunch.jpg", fileName)
			resp := result.(*api.UploadResponse)
			resp.PhotoURL = "/static/m1.jpg"
			return nil
		},
	}
	service, store, _, _ := newTestService(apiMock)
	ctx := context.Background()

	payload, err := json.Marshal(api.Meal{ID: "m1", Name: "salad", Date: "2026-02-09", UpdatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, store.SaveRecord(ctx, &models.Record{
		ID: "m1", Type: models.RecordTypeMeal, Date: "2026-02-09", Payload: payload, Synced: true,
	}))

	url, err := service.UploadMealPhoto(ctx, "m1", "lunch.jpg", []byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, "/static/m1.jpg", url)

	record, err := store.GetRecord(ctx, "m1")
	require.NoError(t, err)
	var meal api.Meal
	require.NoError(t, json.Unmarshal(record.Payload, &meal))
	assert.Equal(t, "/static/m1.jpg", meal.PhotoURL)
}

func TestProfile_Passthrough(t *testing.T) {
	apiMock := &ClientAPIMock{
		DoFunc: func(ctx context.Context, ep httpapi.Endpoint, body, result any) error {
			profile := result.(*api.Profile)
			profile.DisplayName = "athlete"
			profile.DailyCalorieGoal = 2200
			return nil
		},
	}
	service, _, _, _ := newTestService(apiMock)

	profile, err := service.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "athlete", profile.DisplayName)
	assert.Equal(t, 2200, profile.DailyCalorieGoal)
}
