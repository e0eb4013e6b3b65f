package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/leadflowhq/leadflow-backend/api/routes"
	"github.com/leadflowhq/leadflow-backend/internal/history"
	"github.com/leadflowhq/leadflow-backend/internal/leads"
	"github.com/leadflowhq/leadflow-backend/internal/ratelimit"
	"github.com/leadflowhq/leadflow-backend/internal/users"
	"github.com/leadflowhq/leadflow-backend/pkg/config"
	"github.com/leadflowhq/leadflow-backend/pkg/db"
	"github.com/leadflowhq/leadflow-backend/pkg/db/models"
	"github.com/leadflowhq/leadflow-backend/pkg/logger"
	"github.com/leadflowhq/leadflow-backend/pkg/metrics"
	"github.com/leadflowhq/leadflow-backend/pkg/migrate"
	"github.com/leadflowhq/leadflow-backend/pkg/redis"
)

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

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	var counterStore ratelimit.CounterStore = ratelimit.NewMemoryStore()
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		counterStore = ratelimit.NewRedisStore(redisClient)
	} else {
		logg.Info(ctx, "redis not configured, rate limits are per-process")
	}

	limiter, err := ratelimit.New(counterStore)
	if err != nil {
		logg.Error(ctx, "failed to create rate limiter", err)
		os.Exit(1)
	}
	for class, policy := range routes.Policies(cfg.RateLimit) {
		limiter.SetPolicy(class, policy)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	if _, err := usersRepo.Ensure(ctx, models.User{
		ID:    cfg.Demo.UserID,
		Email: cfg.Demo.UserEmail,
		Name:  cfg.Demo.UserName,
	}); err != nil {
		logg.Error(ctx, "failed to seed demo user", err)
		os.Exit(1)
	}

	leadsService, err := leads.NewService(
		leads.NewRepository(dbClient.DB()),
		history.NewRepository(dbClient.DB()),
	)
	if err != nil {
		logg.Error(ctx, "failed to create leads service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, limiter,
			leadsService, httpMetrics, metricsHandler,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down")
		timeout, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := server.Shutdown(timeout)
		if redisClient != nil {
			err = multierr.Append(err, redisClient.Close())
		}
		err = multierr.Append(err, dbClient.Close())
		if err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
