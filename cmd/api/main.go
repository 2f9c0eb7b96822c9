package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rental-notify/internal/infra/adapter/persistence/postgres"
	"rental-notify/internal/infra/cache"
	"rental-notify/internal/infra/db"
	"rental-notify/internal/infra/provider"
	"rental-notify/internal/infra/queue"
	"rental-notify/internal/observability/logging"
	"rental-notify/internal/observability/tracing"
	"rental-notify/internal/repository"
	"rental-notify/pkg/config"

	deliveryUC "rental-notify/internal/usecase/delivery"
	dispatchUC "rental-notify/internal/usecase/dispatch"
	inappUC "rental-notify/internal/usecase/inapp"
	jobUC "rental-notify/internal/usecase/job"
	linkcodeUC "rental-notify/internal/usecase/linkcode"
	prefsUC "rental-notify/internal/usecase/prefs"

	hhttp "rental-notify/internal/handler/http"
	"rental-notify/internal/handler/http/jobs"
	"rental-notify/internal/handler/http/linkcodes"
	"rental-notify/internal/handler/http/notifications"
	"rental-notify/internal/handler/http/preferences"
	"rental-notify/internal/handler/http/requestid"
	"rental-notify/internal/handler/http/webhook"
	"rental-notify/internal/handler/http/worker"
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	validateJWTSecret(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefsRepo := prefsRepository(ctx, logger, database)
	deliverySvc := deliveryUC.NewService(
		postgres.NewDeliveryRepo(database),
		postgres.NewInAppRepo(database),
		prefsRepo,
		provider.NewRegistry(provider.LoadAdaptersFromEnv(logger)...),
	)

	publisher, dispatcher := initQueue(ctx, logger, database, prefsRepo, deliverySvc)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close queue", slog.Any("error", err))
		}
	}()

	handler := setupServer(logger, database, publisher, prefsRepo, deliverySvc, getVersion())
	runServer(ctx, cancel, logger, handler, dispatcher)
}

// validateJWTSecret validates the JWT_SECRET environment variable.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// initQueue wires the job-event path. With NATS_URL set, jobs are published
// to NATS and consumed by separate worker processes. Without it, the API
// runs single-binary: an in-process queue feeds a dispatcher goroutine.
func initQueue(ctx context.Context, logger *slog.Logger, database *sql.DB, prefsRepo repository.PreferencesRepository, deliverySvc deliveryUC.Service) (queue.Publisher, dispatchUC.Service) {
	natsURL := config.GetEnvString("NATS_URL", "")
	if natsURL != "" {
		nq, err := queue.NewNATSQueue(natsURL)
		if err != nil {
			logger.Error("failed to connect to NATS", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("job events published to NATS", slog.String("url", natsURL))
		return nq, nil
	}

	logger.Warn("NATS_URL not set, dispatching jobs in process")

	mq := queue.NewMemoryQueue(config.GetEnvInt("JOB_QUEUE_BUFFER", 256))
	dispatcher := dispatchUC.NewService(
		postgres.NewJobRepo(database),
		prefsRepo,
		deliverySvc,
		config.GetEnvInt("DISPATCH_MAX_CONCURRENT", 10),
	)

	go func() {
		err := mq.ConsumeJobCreated(ctx, func(ctx context.Context, event queue.JobCreatedEvent) error {
			return dispatcher.Dispatch(ctx, event.JobID)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("in-process dispatcher stopped", slog.Any("error", err))
		}
	}()

	return mq, dispatcher
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

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer configures the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, publisher queue.Publisher, prefsRepo repository.PreferencesRepository, deliverySvc deliveryUC.Service, version string) http.Handler {
	jobSvc := jobUC.NewService(postgres.NewJobRepo(database), publisher)
	prefsSvc := prefsUC.NewService(prefsRepo)
	inappSvc := inappUC.NewService(postgres.NewInAppRepo(database))
	linkcodeSvc := linkcodeUC.NewService(postgres.NewLinkCodeRepo(database), prefsRepo)

	mux := http.NewServeMux()

	// Public endpoints
	mux.Handle("GET    /healthz", hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("GET    /ready", hhttp.ReadyHandler{DB: database})
	mux.Handle("GET    /live", hhttp.LiveHandler{})
	mux.Handle("GET    /metrics", hhttp.MetricsHandler())
	webhook.Register(mux, deliverySvc, logger)

	// Authenticated resources (each register applies the auth middleware)
	jobs.Register(mux, jobSvc)
	worker.Register(mux, deliverySvc)
	linkcodes.Register(mux, linkcodeSvc)
	notifications.Register(mux, inappSvc)
	preferences.Register(mux, prefsSvc)

	return applyMiddleware(logger, mux)
}

// applyMiddleware wraps the handler with the shared chain.
// Order (outermost first): Request ID → IP Rate Limit → Tracing → Recovery →
// Logging → Input Validation → Body Limit → Metrics → Timeout.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	rateLimiter := hhttp.NewRateLimiter(
		config.GetEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		time.Minute,
	)

	chain := handler
	chain = hhttp.Timeout(config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second))(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = rateLimiter.Limit(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, handler http.Handler, dispatcher dispatchUC.Service) {
	addr := config.GetEnvString("HTTP_ADDR", ":8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// Let in-flight channel deliveries finish in single-binary mode.
	if dispatcher != nil {
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			logger.Warn("dispatcher shutdown incomplete", slog.Any("error", err))
		}
	}

	logger.Info("server stopped")
}
