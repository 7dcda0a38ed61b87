package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/benvon/smart-planner/internal/workers"
	"go.uber.org/zap"
)

const serviceName = "smart-planner-worker"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for AI request logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if !cfg.QueueEnabled() {
		zapLogger.Fatal("rabbitmq_url_not_configured")
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_backend", cfg.AIBackend),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

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
		zapLogger.Fatal("failed_to_create_planning_service", zap.Error(err))
	}

	analysis := planner.NewAnalysisService(backend, database.NewEmotionLogRepository(db), zapLogger)
	analyzer := workers.NewEmotionAnalyzer(analysis, jobQueue, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	zapLogger.Info("worker_started")

	analyzer.Run(ctx, msgChan, errChan)

	zapLogger.Info("worker_stopped")
}
