package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vitalog/vitalog/internal/client/api"
	"github.com/vitalog/vitalog/internal/client/auth"
	"github.com/vitalog/vitalog/internal/client/cache"
	"github.com/vitalog/vitalog/internal/client/cli"
	"github.com/vitalog/vitalog/internal/client/data"
	"github.com/vitalog/vitalog/internal/client/iocli"
	"github.com/vitalog/vitalog/internal/client/pending"
	"github.com/vitalog/vitalog/internal/client/storage/boltdb"
	"github.com/vitalog/vitalog/internal/client/sync"
	"github.com/vitalog/vitalog/internal/crypto"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "vitalog-client.db", "Path to local database")
	keyPath := flag.String("key", "vitalog-client.key", "Path to storage key material")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()

	storageKey, err := crypto.LoadOrCreateStorageKey(*keyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load storage key: %v\n", err)
		os.Exit(1)
	}

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	authService := auth.NewService(boltStorage, storageKey)
	apiClient := api.NewClient(*serverURL, authService, cache.New(), logger)
	syncService := sync.NewService(apiClient, boltStorage, logger)
	pendingService := pending.NewService(boltStorage, apiClient, logger)
	dataService := data.NewService(apiClient, boltStorage, syncService, pendingService, logger)

	c := cli.New(dataService, syncService, authService, boltStorage, iocli.NewStdio())
	c.Run(ctx, args[0], args[1:])
}

func printVersion() {
	fmt.Printf("Vitalog Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
