package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lovepage-app/lovepage-backend/api/routes"
	"github.com/lovepage-app/lovepage-backend/internal/assets"
	"github.com/lovepage-app/lovepage-backend/internal/drafts"
	"github.com/lovepage-app/lovepage-backend/internal/finalize"
	"github.com/lovepage-app/lovepage-backend/internal/pages"
	"github.com/lovepage-app/lovepage-backend/internal/payments"
	"github.com/lovepage-app/lovepage-backend/internal/users"
	"github.com/lovepage-app/lovepage-backend/internal/webhooks"
	mpwebhook "github.com/lovepage-app/lovepage-backend/internal/webhooks/mercadopago"
	stripewebhook "github.com/lovepage-app/lovepage-backend/internal/webhooks/stripe"
	"github.com/lovepage-app/lovepage-backend/pkg/config"
	"github.com/lovepage-app/lovepage-backend/pkg/db"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/mercadopago"
	"github.com/lovepage-app/lovepage-backend/pkg/metrics"
	"github.com/lovepage-app/lovepage-backend/pkg/migrate"
	"github.com/lovepage-app/lovepage-backend/pkg/paypal"
	"github.com/lovepage-app/lovepage-backend/pkg/redis"
	"github.com/lovepage-app/lovepage-backend/pkg/storage/gcs"
	"github.com/lovepage-app/lovepage-backend/pkg/stripe"
)

const webhookReplayTTL = 48 * time.Hour

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	paypalClient, err := paypal.NewClient(ctx, cfg.PayPal, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap paypal", err)
		os.Exit(1)
	}

	mpClient, err := mercadopago.NewClient(ctx, cfg.MercadoPago, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap mercado pago", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	finalizeMetrics := metrics.NewFinalizeMetrics(registry)

	draftsRepo := drafts.NewRepository(dbClient.DB())
	pagesRepo := pages.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())

	promoter, err := assets.NewPromoter(assets.PromoterParams{
		Store:         gcsClient.BucketHandle(""),
		TempRoot:      cfg.Storage.TempRoot,
		PermanentRoot: cfg.Storage.PermanentRoot,
		Logger:        logg,
		Metrics:       finalizeMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create asset promoter", err)
		os.Exit(1)
	}

	draftsService, err := drafts.NewService(drafts.ServiceParams{
		Repo:   draftsRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create drafts service", err)
		os.Exit(1)
	}

	finalizeService, err := finalize.NewService(finalize.ServiceParams{
		Drafts:   draftsRepo,
		Pages:    pagesRepo,
		Users:    usersRepo,
		Promoter: promoter,
		Metrics:  finalizeMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create finalize service", err)
		os.Exit(1)
	}

	stripeGuard, err := webhooks.NewIdempotencyGuard(redisClient, webhookReplayTTL, "stripe-webhook")
	if err != nil {
		logg.Error(ctx, "failed to create stripe replay guard", err)
		os.Exit(1)
	}
	stripeWebhooks, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Finalizer: finalizeService,
		Guard:     stripeGuard,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	mpGuard, err := webhooks.NewIdempotencyGuard(redisClient, webhookReplayTTL, "mercadopago-webhook")
	if err != nil {
		logg.Error(ctx, "failed to create mercado pago replay guard", err)
		os.Exit(1)
	}
	mpWebhooks, err := mpwebhook.NewService(mpwebhook.ServiceParams{
		Payments:  mpClient,
		Finalizer: finalizeService,
		Guard:     mpGuard,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create mercado pago webhook service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Params{
		Config:  cfg,
		Logger:  logg,
		DB:      dbClient,
		Redis:   redisClient,
		Storage: gcsClient,
		Metrics: registry,

		Drafts:    draftsService,
		Pages:     pagesRepo,
		Finalizer: finalizeService,
		Operator:  finalizeService,

		StripeAdapter:      payments.NewStripeAdapter(stripeClient, cfg.Stripe.Currency, cfg.App.PublicOrigin),
		PayPalAdapter:      payments.NewPayPalAdapter(paypalClient, cfg.PayPal.Currency),
		MercadoPagoAdapter: payments.NewMercadoPagoAdapter(mpClient, cfg.MercadoPago.Currency),

		StripeClient:        stripeClient,
		StripeWebhooks:      stripeWebhooks,
		MercadoPagoSecrets:  mpClient,
		MercadoPagoWebhooks: mpWebhooks,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
