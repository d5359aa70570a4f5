package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/danverhoeven/adledger-backend/internal/cron"
	"github.com/danverhoeven/adledger-backend/internal/networks"
	"github.com/danverhoeven/adledger-backend/pkg/config"
	"github.com/danverhoeven/adledger-backend/pkg/db"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
	"github.com/danverhoeven/adledger-backend/pkg/metrics"
	"github.com/danverhoeven/adledger-backend/pkg/migrate"
	"github.com/danverhoeven/adledger-backend/pkg/redis"
)

const lockKeyFormat = "adledger:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	networkService, err := networks.NewService(networks.ServiceParams{
		Repo:   networks.NewRepository(dbClient.DB()),
		Config: cfg.Networks,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create network service", err)
		os.Exit(1)
	}

	tokenRefreshJob, err := cron.NewTokenRefreshJob(cron.TokenRefreshJobParams{
		Logger:   logg,
		Networks: networkService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create token refresh job", err)
		os.Exit(1)
	}

	connectionCheckJob, err := cron.NewConnectionCheckJob(cron.ConnectionCheckJobParams{
		Logger:   logg,
		Networks: networkService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create connection check job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(tokenRefreshJob, connectionCheckJob),
		Lock:     lock,
		Metrics:  metrics.New(),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
