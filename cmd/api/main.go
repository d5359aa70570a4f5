package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/danverhoeven/adledger-backend/api/routes"
	"github.com/danverhoeven/adledger-backend/internal/auth"
	"github.com/danverhoeven/adledger-backend/internal/entries"
	"github.com/danverhoeven/adledger-backend/internal/networks"
	"github.com/danverhoeven/adledger-backend/internal/reports"
	"github.com/danverhoeven/adledger-backend/internal/settings"
	"github.com/danverhoeven/adledger-backend/internal/users"
	"github.com/danverhoeven/adledger-backend/pkg/auth/session"
	"github.com/danverhoeven/adledger-backend/pkg/config"
	"github.com/danverhoeven/adledger-backend/pkg/db"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
	"github.com/danverhoeven/adledger-backend/pkg/metrics"
	"github.com/danverhoeven/adledger-backend/pkg/migrate"
	"github.com/danverhoeven/adledger-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	entryRepo := entries.NewRepository(dbClient.DB())
	entryService, err := entries.NewService(entryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create entry service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()), logg, cfg.Settings.AutoSaveDelay)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}
	defer settingsService.Close()

	apiMetrics := metrics.New()

	reportService, err := reports.NewService(entryRepo, settingsService, apiMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	networkService, err := networks.NewService(networks.ServiceParams{
		Repo:   networks.NewRepository(dbClient.DB()),
		Config: cfg.Networks,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create network service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Metrics:  apiMetrics,
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Auth:     authService,
		Entries:  entryService,
		Reports:  reportService,
		Networks: networkService,
		Settings: settingsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
