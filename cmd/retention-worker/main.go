package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lovepage-app/lovepage-backend/internal/assets"
	"github.com/lovepage-app/lovepage-backend/internal/cron"
	"github.com/lovepage-app/lovepage-backend/internal/drafts"
	"github.com/lovepage-app/lovepage-backend/pkg/config"
	"github.com/lovepage-app/lovepage-backend/pkg/db"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/metrics"
	"github.com/lovepage-app/lovepage-backend/pkg/migrate"
	"github.com/lovepage-app/lovepage-backend/pkg/redis"
	"github.com/lovepage-app/lovepage-backend/pkg/storage/gcs"
)

const lockKeyFormat = "lp:retention-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "retention-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "retention-worker",
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	promoter, err := assets.NewPromoter(assets.PromoterParams{
		Store:         gcsClient.BucketHandle(""),
		TempRoot:      cfg.Storage.TempRoot,
		PermanentRoot: cfg.Storage.PermanentRoot,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create asset promoter", err)
		os.Exit(1)
	}

	staleMediaJob, err := cron.NewStaleDraftMediaJob(cron.StaleDraftMediaJobParams{
		Logger:        logg,
		Drafts:        drafts.NewRepository(dbClient.DB()),
		Deleter:       promoter,
		RetentionDays: cfg.Retention.StaleDraftMediaDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stale draft media job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create retention lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleMediaJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Retention.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create retention service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
	})
	logg.Info(ctx, "starting retention worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "retention worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "retention worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
