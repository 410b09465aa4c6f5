package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/nyudevops/shopcarts/api/routes"
	"github.com/nyudevops/shopcarts/internal/shopcarts"
	"github.com/nyudevops/shopcarts/pkg/config"
	"github.com/nyudevops/shopcarts/pkg/db"
	"github.com/nyudevops/shopcarts/pkg/logger"
	"github.com/nyudevops/shopcarts/pkg/metrics"
	"github.com/nyudevops/shopcarts/pkg/migrate"
	"github.com/nyudevops/shopcarts/pkg/orders"
	"github.com/nyudevops/shopcarts/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "shopcarts-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "shopcarts-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	deps := routes.Deps{DB: dbClient}
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			_ = dbClient.Close()
			os.Exit(1)
		}
		deps.Redis = redisClient
		deps.IdempotencyStore = redisClient
	} else {
		logg.Info(ctx, "redis not configured, idempotent replay disabled")
	}

	orderClient, err := orders.NewClient(cfg.Orders.Endpoint, orders.WithTimeout(cfg.Orders.Timeout))
	if err != nil {
		logg.Error(ctx, "failed to create order client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Registry = registry

	svc, err := shopcarts.NewService(shopcarts.ServiceParams{
		Shopcarts: shopcarts.NewShopcartRepo(dbClient.DB()),
		Items:     shopcarts.NewItemRepo(dbClient.DB()),
		Tx:        dbClient,
		Orders:    orderClient,
		Metrics:   metrics.NewOrderMetrics(registry),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create shopcart service", err)
		os.Exit(1)
	}
	deps.Shopcarts = svc

	addr := ":" + cfg.App.Port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"order_endpoint": orderClient.Endpoint(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, deps),
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.App.ShutdownTimeout)
	defer cancel()

	closeErr := server.Shutdown(shutdownCtx)
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(serverCtx, "error during shutdown", closeErr)
		exitCode = 1
	}

	logg.Info(serverCtx, "api server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
