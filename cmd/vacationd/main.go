package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/example/vacation-approval/internal/application"
	"github.com/example/vacation-approval/internal/config"
	httptransport "github.com/example/vacation-approval/internal/http"
	"github.com/example/vacation-approval/internal/logging"
	"github.com/example/vacation-approval/internal/persistence/adapter"
	"github.com/example/vacation-approval/internal/persistence/sqlite"
)

func main() {
	if err := config.LoadFile(".env"); err != nil {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           svc.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("vacation API listening", "addr", server.Addr, "storage", cfg.Storage, "timezone", cfg.Location.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// app bundles the HTTP handler with the storage it must release on exit.
type app struct {
	Handler http.Handler
	closer  interface{ Close() error }
}

// Close releases the storage backend.
func (a *app) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// newApp opens storage, optionally seeds it and wires services into the router.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	backend, closer, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	store := adapter.New(backend)
	now := time.Now
	ids := uuid.NewString

	if cfg.Seed {
		created, err := seedOrganisation(ctx, store, application.HashPassword, cfg.TemporaryPassword, ids, now().In(location))
		if err != nil {
			_ = closer.Close()
			return nil, fmt.Errorf("seed organisation: %w", err)
		}
		logger.Info("seeded default organisation", "users", created)
	}

	tokens, err := httptransport.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL, now)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	notifications := application.NewNotificationServiceWithLogger(store, ids, now, logger)
	vacations := application.NewVacationServiceWithLogger(store, notifications, ids, now, location, logger)
	users := application.NewUserServiceWithLogger(store, nil, cfg.TemporaryPassword, ids, now, logger)
	auth := application.NewAuthServiceWithLogger(store, nil, nil, cfg.TemporaryPassword, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(auth, tokens, logger),
		Vacations:     httptransport.NewVacationHandler(vacations, logger),
		Notifications: httptransport.NewNotificationHandler(notifications, logger),
		Users:         httptransport.NewUserHandler(users, logger),
		Tokens:        tokens,
		Identifier:    auth,
		Logger:        logger,
		CORSOrigins:   cfg.CORSOrigins,
		LoginRate:     rate.Limit(cfg.LoginRate),
		LoginBurst:    cfg.LoginBurst,
	})
	return &app{Handler: router, closer: closer}, nil
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (adapter.Backend, interface{ Close() error }, error) {
	if cfg.Storage == config.StorageMemory {
		memory := sqlite.NewMemory()
		return memory, memory, nil
	}

	store, err := sqlite.Open(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Migrate(ctx, logger); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, store, nil
}
