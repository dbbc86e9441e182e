package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitalog/vitalog/internal/server/handlers"
	"github.com/vitalog/vitalog/internal/server/middleware"
	"github.com/vitalog/vitalog/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	shutdownTimeout  = 10 * time.Second
	tokenSweepPeriod = time.Hour

	rateLimitRequests = 100
	rateLimitWindow   = time.Minute
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "vitalog.db", "Path to the sqlite database")
	jwtSecret := flag.String("jwt-secret", "", "JWT signing secret (or VITALOG_JWT_SECRET)")
	uploadDir := flag.String("uploads", "uploads", "Directory for meal photos")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *addr, *dbPath, *jwtSecret, *uploadDir); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath, jwtSecret, uploadDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if jwtSecret == "" {
		jwtSecret = os.Getenv("VITALOG_JWT_SECRET")
	}
	if jwtSecret == "" {
		return errors.New("JWT secret is required: pass -jwt-secret or set VITALOG_JWT_SECRET")
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(jwtSecret),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}

	go sweepExpiredTokens(ctx, logger, store)

	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(logger, store, jwtConfig, uploadDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "version", Version)
		errC <- server.ListenAndServe()
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func newRouter(logger *slog.Logger, store *sqlite.Storage, jwtConfig handlers.JWTConfig, uploadDir string) http.Handler {
	authHandler := handlers.NewAuthHandler(logger, store, store, jwtConfig)
	recordsHandler := handlers.NewRecordsHandler(logger, store)
	photoHandler := handlers.NewPhotoHandler(logger, store, uploadDir)
	profileHandler := handlers.NewProfileHandler(logger, store)
	statsHandler := handlers.NewStatsHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	requireAuth := middleware.AuthMiddleware(logger, jwtConfig)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/device", authHandler.DeviceAuth)

	mux.Handle("GET /api/v1/meals", requireAuth(http.HandlerFunc(recordsHandler.ListMeals)))
	mux.Handle("POST /api/v1/meals", requireAuth(http.HandlerFunc(recordsHandler.CreateMeal)))
	mux.Handle("PUT /api/v1/meals/{id}", requireAuth(http.HandlerFunc(recordsHandler.UpdateMeal)))
	mux.Handle("DELETE /api/v1/meals/{id}", requireAuth(http.HandlerFunc(recordsHandler.DeleteMeal)))
	mux.Handle("POST /api/v1/meals/{id}/photo", requireAuth(http.HandlerFunc(photoHandler.Upload)))

	mux.Handle("GET /api/v1/water", requireAuth(http.HandlerFunc(recordsHandler.ListWater)))
	mux.Handle("POST /api/v1/water", requireAuth(http.HandlerFunc(recordsHandler.AddWater)))
	mux.Handle("DELETE /api/v1/water/{id}", requireAuth(http.HandlerFunc(recordsHandler.DeleteWater)))

	mux.Handle("GET /api/v1/profile", requireAuth(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PUT /api/v1/profile", requireAuth(http.HandlerFunc(profileHandler.Update)))

	mux.Handle("GET /api/v1/stats/weekly", requireAuth(http.HandlerFunc(statsHandler.Weekly)))
	mux.Handle("GET /api/v1/stats/monthly", requireAuth(http.HandlerFunc(statsHandler.Monthly)))

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(uploadDir))))

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(rateLimitRequests, rateLimitWindow, logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)
	return handler
}

// sweepExpiredTokens periodically removes refresh tokens past their expiry.
func sweepExpiredTokens(ctx context.Context, logger *slog.Logger, store *sqlite.Storage) {
	ticker := time.NewTicker(tokenSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.DeleteExpiredTokens(ctx)
			if err != nil {
				logger.Error("failed to sweep expired tokens", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("swept expired refresh tokens", "count", deleted)
			}
		}
	}
}

func printVersion() {
	fmt.Printf("Vitalog Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
