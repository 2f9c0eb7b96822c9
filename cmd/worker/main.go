package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	hhttp "rental-notify/internal/handler/http"
	"rental-notify/internal/handler/http/respond"
	"rental-notify/internal/infra/adapter/persistence/postgres"
	"rental-notify/internal/infra/cache"
	"rental-notify/internal/infra/db"
	"rental-notify/internal/infra/provider"
	"rental-notify/internal/infra/queue"
	"rental-notify/internal/observability/logging"
	"rental-notify/internal/repository"
	"rental-notify/pkg/config"

	deliveryUC "rental-notify/internal/usecase/delivery"
	dispatchUC "rental-notify/internal/usecase/dispatch"
)

// waitForMigrations blocks until the schema is in place. The API process
// owns migrations; a worker that races it just retries.
func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM notification_jobs LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := provider.NewRegistry(provider.LoadAdaptersFromEnv(logger)...)

	deliveries := postgres.NewDeliveryRepo(database)
	prefsRepo := prefsRepository(ctx, logger, database)
	deliverySvc := deliveryUC.NewService(
		deliveries,
		postgres.NewInAppRepo(database),
		prefsRepo,
		registry,
	)
	dispatcher := dispatchUC.NewService(
		postgres.NewJobRepo(database),
		prefsRepo,
		deliverySvc,
		config.GetEnvInt("DISPATCH_MAX_CONCURRENT", 10),
	)

	consumer := initConsumer(logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close queue", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger, registry)
	startLedgerStatsJob(logger, deliveries)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := consumer.ConsumeJobCreated(gctx, func(ctx context.Context, event queue.JobCreatedEvent) error {
			return dispatchJob(ctx, logger, dispatcher, event)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutting down worker...")
	case <-gctx.Done():
		logger.Error("consumer stopped, shutting down")
	}

	cancel()
	if err := g.Wait(); err != nil {
		logger.Error("consumer stopped", slog.Any("error", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("dispatcher shutdown incomplete", slog.Any("error", err))
	}

	logger.Info("worker stopped")
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// initConsumer connects to NATS. Unlike the API, the worker has no
// in-process fallback: a worker without a queue has nothing to do.
func initConsumer(logger *slog.Logger) queue.Consumer {
	natsURL := config.GetEnvString("NATS_URL", "")
	if natsURL == "" {
		logger.Error("NATS_URL must be set")
		os.Exit(1)
	}
	nq, err := queue.NewNATSQueue(natsURL)
	if err != nil {
		logger.Error("failed to connect to NATS", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("consuming job events from NATS", slog.String("url", natsURL))
	return nq
}

// prefsRepository returns the preferences store, wrapped by the Redis
// cache-aside decorator when REDIS_ADDR is configured.
func prefsRepository(ctx context.Context, logger *slog.Logger, database *sql.DB) repository.PreferencesRepository {
	inner := postgres.NewPreferencesRepo(database)

	redisAddr := config.GetEnvString("REDIS_ADDR", "")
	if redisAddr == "" {
		return inner
	}

	client, err := cache.NewClient(ctx,
		redisAddr,
		config.GetEnvString("REDIS_PASSWORD", ""),
		config.GetEnvInt("REDIS_DB", 0),
	)
	if err != nil {
		logger.Warn("redis unavailable, preferences served without cache", slog.Any("error", err))
		return inner
	}

	logger.Info("preferences cache enabled", slog.String("addr", redisAddr))
	return cache.NewCachedPreferencesRepository(inner, client)
}

// dispatchJob runs the fan-out for one job event with a timeout.
func dispatchJob(ctx context.Context, logger *slog.Logger, dispatcher dispatchUC.Service, event queue.JobCreatedEvent) error {
	start := time.Now()
	logger.Info("dispatch started", slog.String("job_id", event.JobID))

	ctx, cancel := context.WithTimeout(ctx, config.GetEnvDuration("DISPATCH_TIMEOUT", 2*time.Minute))
	defer cancel()

	if err := dispatcher.Dispatch(ctx, event.JobID); err != nil {
		logger.Error("dispatch failed",
			slog.String("job_id", event.JobID),
			slog.String("error", respond.SanitizeError(err)))
		return err
	}

	logger.Info("dispatch completed",
		slog.String("job_id", event.JobID),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// startLedgerStatsJob refreshes the ledger-rows gauge on a schedule so
// Prometheus sees delivery outcomes without the scrape path touching the
// database.
func startLedgerStatsJob(logger *slog.Logger, deliveries repository.DeliveryRepository) {
	schedule := config.GetEnvString("LEDGER_STATS_SCHEDULE", "@every 1m")

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		counts, err := deliveries.CountByStatus(ctx)
		if err != nil {
			logger.Warn("ledger stats refresh failed", slog.Any("error", err))
			return
		}
		hhttp.UpdateLedgerRows(counts)
	})
	if err != nil {
		logger.Error("failed to schedule ledger stats job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	logger.Info("ledger stats job scheduled", slog.String("schedule", schedule))
}
