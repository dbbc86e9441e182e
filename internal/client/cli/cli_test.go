package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalog/vitalog/internal/client/iocli"
	"github.com/vitalog/vitalog/internal/client/pending"
	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/client/sync"
	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/pkg/api"
)

type dataServiceFake struct {
	meals      []api.Meal
	water      []api.WaterLog
	profile    api.Profile
	stats      api.StatsResponse
	added      []*api.Meal
	deleted    []string
	undoRecord *models.Record
	undoErr    error
}

func (f *dataServiceFake) AddMeal(ctx context.Context, meal *api.Meal) error {
	meal.ID = "generated-id"
	f.added = append(f.added, meal)
	return nil
}

func (f *dataServiceFake) Meals(ctx context.Context, date string) ([]api.Meal, error) {
	return f.meals, nil
}

func (f *dataServiceFake) DeleteMeal(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *dataServiceFake) AddWater(ctx context.Context, log *api.WaterLog) error {
	log.ID = "generated-id"
	return nil
}

func (f *dataServiceFake) Water(ctx context.Context, date string) ([]api.WaterLog, error) {
	return f.water, nil
}

func (f *dataServiceFake) DeleteWater(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *dataServiceFake) Undo(ctx context.Context) (*models.Record, error) {
	return f.undoRecord, f.undoErr
}

func (f *dataServiceFake) Profile(ctx context.Context) (*api.Profile, error) {
	profile := f.profile
	return &profile, nil
}

func (f *dataServiceFake) UpdateProfile(ctx context.Context, profile *api.Profile) error {
	f.profile = *profile
	return nil
}

func (f *dataServiceFake) WeeklyStats(ctx context.Context, start string) (*api.StatsResponse, error) {
	return &f.stats, nil
}

func (f *dataServiceFake) MonthlyStats(ctx context.Context, month string) (*api.StatsResponse, error) {
	return &f.stats, nil
}

func (f *dataServiceFake) UploadMealPhoto(ctx context.Context, mealID, fileName string, content []byte) (string, error) {
	return "/static/" + mealID + ".jpg", nil
}

type syncServiceFake struct {
	result sync.Result
	dates  []string
}

func (f *syncServiceFake) Sync(ctx context.Context, date string) (*sync.Result, error) {
	f.dates = append(f.dates, date)
	return &f.result, nil
}

type authServiceFake struct {
	deviceID string
	creds    *storage.Credentials
	credsErr error
	cleared  bool
}

func (f *authServiceFake) DeviceID(ctx context.Context) (string, error) {
	return f.deviceID, nil
}

func (f *authServiceFake) Credentials(ctx context.Context) (*storage.Credentials, error) {
	return f.creds, f.credsErr
}

func (f *authServiceFake) ClearCredentials(ctx context.Context) error {
	f.cleared = true
	return nil
}

type recordStoreFake struct {
	unsynced map[models.RecordType][]*models.Record
}

func (f *recordStoreFake) SaveRecord(ctx context.Context, record *models.Record) error { return nil }
func (f *recordStoreFake) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	return nil, storage.ErrRecordNotFound
}
func (f *recordStoreFake) ListRecords(ctx context.Context, scope storage.RecordScope) ([]*models.Record, error) {
	return nil, nil
}
func (f *recordStoreFake) ListVisibleRecords(ctx context.Context, scope storage.RecordScope) ([]*models.Record, error) {
	return nil, nil
}
func (f *recordStoreFake) ListUnsynced(ctx context.Context, recordType models.RecordType) ([]*models.Record, error) {
	return f.unsynced[recordType], nil
}
func (f *recordStoreFake) DeleteRecord(ctx context.Context, id string) error { return nil }
func (f *recordStoreFake) ApplyMerge(ctx context.Context, scope storage.RecordScope, upserts []*models.Record, deleteIDs []string) error {
	return nil
}

func newTestCli(data *dataServiceFake, input string) (*Cli, *bytes.Buffer) {
	var out bytes.Buffer
	c := New(data, &syncServiceFake{}, &authServiceFake{deviceID: "d-123"},
		&recordStoreFake{unsynced: map[models.RecordType][]*models.Record{}},
		iocli.NewStdioWith(&out, strings.NewReader(input)))
	return c, &out
}

func TestRunAddMeal(t *testing.T) {
	data := &dataServiceFake{}
	c, out := newTestCli(data, "")

	err := c.RunAddMeal(context.Background(),
		[]string{"-name", "oatmeal", "-calories", "320", "-date", "2026-02-09", "-protein", "12.5"})

	require.NoError(t, err)
	require.Len(t, data.added, 1)
	assert.Equal(t, "oatmeal", data.added[0].Name)
	assert.Equal(t, 320, data.added[0].Calories)
	assert.Equal(t, 12.5, data.added[0].Protein)
	assert.Contains(t, out.String(), "Logged \"oatmeal\" (320 kcal) on 2026-02-09")
	assert.Contains(t, out.String(), "generated-id")
}

func TestRunAddMeal_Validation(t *testing.T) {
	c, _ := newTestCli(&dataServiceFake{}, "")

	err := c.RunAddMeal(context.Background(), []string{"-calories", "320"})
	assert.ErrorContains(t, err, "missing -name")

	err = c.RunAddMeal(context.Background(), []string{"-name", "x"})
	assert.ErrorContains(t, err, "-calories must be positive")
}

func TestRunMeals(t *testing.T) {
	data := &dataServiceFake{meals: []api.Meal{
		{ID: "m1", Name: "oatmeal", Calories: 320, Protein: 12, Carbs: 54, Fat: 6},
		{ID: "m2", Name: "salad", Calories: 210, Protein: 4, Carbs: 12, Fat: 15},
	}}
	c, out := newTestCli(data, "")

	require.NoError(t, c.RunMeals(context.Background(), []string{"-date", "2026-02-09"}))

	assert.Contains(t, out.String(), "oatmeal")
	assert.Contains(t, out.String(), "salad")
	assert.Contains(t, out.String(), "Total: 530 kcal")
}

func TestRunDeleteMeal_UndoOnEnter(t *testing.T) {
	data := &dataServiceFake{
		undoRecord: &models.Record{ID: "m1", Type: models.RecordTypeMeal},
	}
	c, out := newTestCli(data, "\n")
	c.grace = 50 * time.Millisecond

	require.NoError(t, c.RunDeleteMeal(context.Background(), []string{"m1"}))

	assert.Equal(t, []string{"m1"}, data.deleted)
	assert.Contains(t, out.String(), "Restored meal m1")
}

func TestRunDeleteMeal_ConfirmsWithoutInput(t *testing.T) {
	data := &dataServiceFake{undoErr: pending.ErrNothingToUndo}
	c, out := newTestCli(data, "")
	c.grace = 30 * time.Millisecond

	require.NoError(t, c.RunDeleteMeal(context.Background(), []string{"m1"}))

	assert.Equal(t, []string{"m1"}, data.deleted)
	assert.Contains(t, out.String(), "Deletion confirmed.")
}

func TestRunStatus(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	var out bytes.Buffer
	c := New(&dataServiceFake{}, &syncServiceFake{},
		&authServiceFake{deviceID: "d-123", creds: &storage.Credentials{AccessToken: signed}},
		&recordStoreFake{unsynced: map[models.RecordType][]*models.Record{
			models.RecordTypeMeal: {{ID: "m1"}},
		}},
		iocli.NewStdioWith(&out, strings.NewReader("")))

	require.NoError(t, c.RunStatus(context.Background()))

	assert.Contains(t, out.String(), "Device:  d-123")
	assert.Contains(t, out.String(), "valid until")
	assert.Contains(t, out.String(), "Pending meal uploads: 1")
	assert.Contains(t, out.String(), "Pending water uploads: 0")
}

func TestRunStatus_NoCredentials(t *testing.T) {
	var out bytes.Buffer
	c := New(&dataServiceFake{}, &syncServiceFake{},
		&authServiceFake{deviceID: "d-123", credsErr: storage.ErrCredentialsNotFound},
		&recordStoreFake{unsynced: map[models.RecordType][]*models.Record{}},
		iocli.NewStdioWith(&out, strings.NewReader("")))

	require.NoError(t, c.RunStatus(context.Background()))
	assert.Contains(t, out.String(), "none (will be issued on first request)")
}

func TestRunSync(t *testing.T) {
	syncer := &syncServiceFake{result: sync.Result{Pushed: 2, Pulled: 5, Upserted: 3, Deleted: 1}}
	var out bytes.Buffer
	c := New(&dataServiceFake{}, syncer, &authServiceFake{},
		&recordStoreFake{unsynced: map[models.RecordType][]*models.Record{}},
		iocli.NewStdioWith(&out, strings.NewReader("")))

	require.NoError(t, c.RunSync(context.Background(), []string{"-date", "2026-02-09"}))

	assert.Equal(t, []string{"2026-02-09"}, syncer.dates)
	assert.Contains(t, out.String(), "pushed:   2")
	assert.Contains(t, out.String(), "pulled:   5")
}

func TestRunStats(t *testing.T) {
	data := &dataServiceFake{stats: api.StatsResponse{Days: []api.DayStats{
		{Date: "2026-02-09", Meals: 3, Calories: 1850, Milliliters: 1500},
	}}}
	c, out := newTestCli(data, "")

	require.NoError(t, c.RunStats(context.Background(), []string{"-week", "2026-02-09"}))
	assert.Contains(t, out.String(), "2026-02-09")
	assert.Contains(t, out.String(), "1850")

	err := c.RunStats(context.Background(), nil)
	assert.ErrorContains(t, err, "pass -week")

	err = c.RunStats(context.Background(), []string{"-week", "a", "-month", "b"})
	assert.ErrorContains(t, err, "not both")
}

func TestRunSetProfile(t *testing.T) {
	data := &dataServiceFake{profile: api.Profile{DisplayName: "old", DailyCalorieGoal: 2000, DailyWaterGoalML: 2000}}
	c, out := newTestCli(data, "")

	require.NoError(t, c.RunSetProfile(context.Background(), []string{"-calories", "2200"}))

	// unset flags keep their stored values
	assert.Equal(t, "old", data.profile.DisplayName)
	assert.Equal(t, 2200, data.profile.DailyCalorieGoal)
	assert.Equal(t, 2000, data.profile.DailyWaterGoalML)
	assert.Contains(t, out.String(), "Profile updated.")
}

func TestRunLogout(t *testing.T) {
	auth := &authServiceFake{}
	var out bytes.Buffer
	c := New(&dataServiceFake{}, &syncServiceFake{}, auth,
		&recordStoreFake{unsynced: map[models.RecordType][]*models.Record{}},
		iocli.NewStdioWith(&out, strings.NewReader("")))

	require.NoError(t, c.RunLogout(context.Background()))
	assert.True(t, auth.cleared)
	assert.Contains(t, out.String(), "Tokens cleared")
}
