package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vijayg-dev/warehouse-listing-backend/api/routes"
	"github.com/vijayg-dev/warehouse-listing-backend/internal/analytics"
	user "github.com/vijayg-dev/warehouse-listing-backend/internal/users"
	warehouse "github.com/vijayg-dev/warehouse-listing-backend/internal/warehouses"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/config"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/images"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/mailer"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/migrate"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/redis"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/storage/local"
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

	// Redis is optional. Without it stats caching and visitor dedup degrade
	// gracefully.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, running without cache")
	}

	fileStore, err := local.New(cfg.Uploads)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	notifier := mailer.New(cfg.Mailer, logg)
	resolver := images.NewResolver(cfg.Images.BaseURL)

	userRepo := user.NewRepository(dbClient.DB())
	warehouseRepo := warehouse.NewRepository(dbClient.DB())

	var warehouseSvc warehouse.Service
	if redisClient != nil {
		warehouseSvc, err = warehouse.NewService(warehouseRepo, dbClient, userRepo, fileStore, notifier, resolver, redisClient, cfg.Flags.StatsCacheTTL, cfg.Uploads.MaxImages, logg)
	} else {
		warehouseSvc, err = warehouse.NewService(warehouseRepo, dbClient, userRepo, fileStore, notifier, resolver, nil, cfg.Flags.StatsCacheTTL, cfg.Uploads.MaxImages, logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse service", err)
		os.Exit(1)
	}

	var analyticsSvc analytics.Service
	if redisClient != nil {
		analyticsSvc, err = analytics.NewService(analytics.NewRepository(dbClient.DB()), warehouseRepo, redisClient, logg)
	} else {
		analyticsSvc, err = analytics.NewService(analytics.NewRepository(dbClient.DB()), warehouseRepo, nil, logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.NewRouter(routes.Deps{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Redis:      pingerOrNil(redisClient),
		Accounts:   userRepo,
		Warehouses: warehouseSvc,
		Analytics:  analyticsSvc,
		Registry:   registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

// pingerOrNil keeps a nil *redis.Client from turning into a non-nil interface.
func pingerOrNil(c *redis.Client) interface {
	Ping(context.Context) error
} {
	if c == nil {
		return nil
	}
	return c
}
