package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vitalog/vitalog/internal/client/iocli"
	"github.com/vitalog/vitalog/internal/client/pending"
	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/client/sync"
	"github.com/vitalog/vitalog/internal/models"
	"github.com/vitalog/vitalog/pkg/api"
)

// DataService is the typed facade the commands drive.
type DataService interface {
	AddMeal(ctx context.Context, meal *api.Meal) error
	Meals(ctx context.Context, date string) ([]api.Meal, error)
	DeleteMeal(ctx context.Context, id string) error
	AddWater(ctx context.Context, log *api.WaterLog) error
	Water(ctx context.Context, date string) ([]api.WaterLog, error)
	DeleteWater(ctx context.Context, id string) error
	Undo(ctx context.Context) (*models.Record, error)
	Profile(ctx context.Context) (*api.Profile, error)
	UpdateProfile(ctx context.Context, profile *api.Profile) error
	WeeklyStats(ctx context.Context, start string) (*api.StatsResponse, error)
	MonthlyStats(ctx context.Context, month string) (*api.StatsResponse, error)
	UploadMealPhoto(ctx context.Context, mealID, fileName string, content []byte) (string, error)
}

// SyncService runs full reconciliation passes.
type SyncService interface {
	Sync(ctx context.Context, date string) (*sync.Result, error)
}

// AuthService exposes the credential lifecycle the commands need.
type AuthService interface {
	DeviceID(ctx context.Context) (string, error)
	Credentials(ctx context.Context) (*storage.Credentials, error)
	ClearCredentials(ctx context.Context) error
}

type Cli struct {
	data    DataService
	syncer  SyncService
	auth    AuthService
	records storage.RecordStorage
	io      iocli.IO
	grace   time.Duration
}

func New(data DataService, syncer SyncService, auth AuthService, records storage.RecordStorage, io iocli.IO) *Cli {
	return &Cli{
		data:    data,
		syncer:  syncer,
		auth:    auth,
		records: records,
		io:      io,
		grace:   pending.DefaultGraceWindow,
	}
}

func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error
	switch command {
	case "status":
		err = c.RunStatus(ctx)
	case "add-meal":
		err = c.RunAddMeal(ctx, args)
	case "meals":
		err = c.RunMeals(ctx, args)
	case "delete-meal":
		err = c.RunDeleteMeal(ctx, args)
	case "add-water":
		err = c.RunAddWater(ctx, args)
	case "water":
		err = c.RunWater(ctx, args)
	case "delete-water":
		err = c.RunDeleteWater(ctx, args)
	case "undo":
		err = c.RunUndo(ctx)
	case "sync":
		err = c.RunSync(ctx, args)
	case "profile":
		err = c.RunProfile(ctx)
	case "set-profile":
		err = c.RunSetProfile(ctx, args)
	case "stats":
		err = c.RunStats(ctx, args)
	case "photo":
		err = c.RunPhoto(ctx, args)
	case "logout":
		err = c.RunLogout(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func PrintUsage() {
	fmt.Println("Usage: vitalog [flags] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status                     Show device identity and sync state")
	fmt.Println("  add-meal                   Log a meal (-name, -calories, -date, -protein, -carbs, -fat)")
	fmt.Println("  meals                      List meals for a day (-date)")
	fmt.Println("  delete-meal <id>           Delete a meal, undoable for a few seconds")
	fmt.Println("  add-water                  Log water intake (-ml, -date)")
	fmt.Println("  water                      List water entries for a day (-date)")
	fmt.Println("  delete-water <id>          Delete a water entry, undoable for a few seconds")
	fmt.Println("  undo                       Undo the most recent deletion")
	fmt.Println("  sync                       Push pending entries and pull server state (-date)")
	fmt.Println("  profile                    Show profile and daily goals")
	fmt.Println("  set-profile                Update profile (-name, -calories, -water)")
	fmt.Println("  stats                      Show aggregates (-week <start> | -month <YYYY-MM>)")
	fmt.Println("  photo <meal-id> <file>     Attach a photo to a meal")
	fmt.Println("  logout                     Forget stored tokens, keep the device identity")
}

// today is the default scope for day-bound commands.
func today() string {
	return time.Now().Format("2006-01-02")
}
