package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/dateparse"
	"github.com/benvon/smart-planner/internal/handlers"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/benvon/smart-planner/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "smart-planner-api"

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.buildDate=...".
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const (
	configReloadInterval = time.Minute
	dlqGCInterval        = time.Hour
	dlqRetention         = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for AI request logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_backend", cfg.AIBackend),
		zap.Bool("queue_enabled", cfg.QueueEnabled()),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tracerProvider *sdktrace.TracerProvider
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, telemetry.Options{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Endpoint:       cfg.OTELEndpoint,
		})
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracerProvider = tp
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	applied, err := db.Migrate(ctx)
	if err != nil {
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	zapLogger.Info("connected_to_database", zap.Strings("migrations_applied", applied))

	taskRepo := database.NewTaskRepository(db, zapLogger)
	emotionLogRepo := database.NewEmotionLogRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	resolver, err := dateparse.NewResolver(cfg.Timezone)
	if err != nil {
		zapLogger.Fatal("failed_to_load_timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	planningService, err := newPlanningService(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Fatal("failed_to_create_planning_service", zap.Error(err))
	}

	healthChecker := handlers.NewHealthChecker(db.HealthCheck)

	var redisLimiter *middleware.RedisRateLimiter
	if cfg.RateLimitEnabled() {
		redisLimiter, err = middleware.NewRedisRateLimiter(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisLimiter.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		healthChecker.AddCheck("redis", redisLimiter.Ping)
		zapLogger.Info("connected_to_redis")
	}

	var ingestOpts []planner.IngestionOption
	var jobQueue queue.JobQueue
	if cfg.QueueEnabled() {
		jobQueue, err = connectQueue(ctx, cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		healthChecker.AddCheck("queue", jobQueue.HealthCheck)
		if cfg.AnalyzeOnPlan {
			ingestOpts = append(ingestOpts, planner.WithJobQueue(jobQueue))
		}
	}

	ingestion := planner.NewIngestionService(planningService, taskRepo, resolver, zapLogger, ingestOpts...)
	analysis := planner.NewAnalysisService(planningService, emotionLogRepo, zapLogger)
	deletion := planner.NewDeletionService(taskRepo, resolver, zapLogger)

	plannerHandler := handlers.NewPlannerHandler(ingestion, analysis, deletion, emotionLogRepo, zapLogger)
	taskHandler := handlers.NewTaskHandler(taskRepo, zapLogger)
	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first registered is outermost.
	if tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName, otelmux.WithTracerProvider(tracerProvider)))
	}
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, configReloadInterval)
	r.Use(corsReloader.Middleware())
	var rateLimitReloader *middleware.RateLimitReloader
	if redisLimiter != nil {
		store, err := middleware.NewRedisStore(redisLimiter.Client())
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
		}
		rateLimitReloader = middleware.NewRateLimitReloader(store, ratelimitConfigRepo, middleware.DefaultRatelimitRate, zapLogger, configReloadInterval)
	}
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.VersionHandler(handlers.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	openAPIHandler.RegisterRoutes(apiRouter)

	limited := apiRouter.PathPrefix("").Subrouter()
	if rateLimitReloader != nil {
		limited.Use(rateLimitReloader.Middleware())
	}
	plannerHandler.RegisterRoutes(limited)
	taskHandler.RegisterRoutes(limited.PathPrefix("/tasks").Subrouter())

	// Preflight requests are answered by the CORS middleware; this route
	// only makes mux match OPTIONS so the middleware chain runs.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go corsReloader.Start(ctx)
	if rateLimitReloader != nil {
		go rateLimitReloader.Start(ctx)
	}

	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, dlqGCInterval, dlqRetention, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", dlqGCInterval),
			zap.Duration("retention", dlqRetention),
		)
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// newPlanningService builds the configured AI backend behind the response cache.
func newPlanningService(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) (ai.PlanningService, error) {
	backend, err := ai.NewDefaultRegistry().Get(cfg.AIBackend, ai.BackendConfig{
		ServiceURL:    cfg.AIServiceURL,
		APIKey:        cfg.OpenAIKey,
		BaseURL:       cfg.AIBaseURL,
		Model:         cfg.AIModel,
		Timeout:       cfg.AITimeout,
		RatePerSecond: cfg.AIRateLimit,
		Logger:        zapLogger,
		Debug:         debugMode,
	})
	if err != nil {
		return nil, err
	}
	return ai.NewCachedPlanningService(backend, cfg.AICacheSize, cfg.AICacheTTL, zapLogger), nil
}

// connectQueue retries with exponential backoff to ride out RabbitMQ startup.
func connectQueue(ctx context.Context, url string, zapLogger *zap.Logger) (*queue.RabbitMQQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := min(initialDelay*time.Duration(1<<uint(attempt)), 30*time.Second)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}
