// cmd/build-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"autobuild/internal/buildqueue"
	"autobuild/internal/common/config"
	"autobuild/internal/common/database"
	"autobuild/internal/common/logger"
	"autobuild/internal/common/observability"
	"autobuild/internal/common/workflow"
	"autobuild/internal/guardrail"
	"autobuild/internal/notify"
	"autobuild/internal/pipeline"
	"autobuild/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting build manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("build-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Workflow Engine Client with retry ---
	var workflowClient *workflow.Client
	err = retryWithBackoff(func() error {
		var err error
		workflowClient, err = workflow.NewClientWithConfig(&workflow.ClientConfig{
			GatewayAddress:         cfg.Workflow.BrokerAddress,
			MessageName:            cfg.Workflow.MessageName,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Workflow.Timeout),
			RequestTimeout:         config.GetDuration(cfg.Workflow.RequestTimeout),
		}, log)
		return err
	}, 10, 2*time.Second, zapLog, "Workflow engine connection")
	if err != nil {
		zapLog.Fatal("workflow engine failed after retries", zap.Error(err))
	}
	defer workflowClient.Close()
	zapLog.Info("Workflow engine connected successfully")

	// --- Compose the pipeline ---
	var moderator guardrail.Moderator
	if cfg.Moderation.Enabled {
		moderator = guardrail.NewHTTPModerator(
			cfg.Moderation.BaseURL,
			cfg.Moderation.APIKey,
			config.GetDuration(cfg.Moderation.Timeout),
			log,
		)
		zapLog.Info("External moderation enabled", zap.String("baseURL", cfg.Moderation.BaseURL))
	}

	engine := guardrail.NewEngine(log, moderator)
	artifactStore := pipeline.NewRedisArtifactStore(redis, 24*time.Hour)
	generator := pipeline.NewArtifactGenerator(artifactStore, log)
	simulator := pipeline.NewSimulator(config.GetDuration(cfg.Pipeline.DeployDelay), log)

	orchestrator := pipeline.NewOrchestrator(engine, generator, simulator, workflowClient, obs, log)

	// --- Post-build hooks: persistence, tracing, notifications ---
	executionStore := store.NewExecutionStore(pg, log)
	traceIndexer := store.NewTraceIndexer(esClient, cfg.Database.Elasticsearch.Index, log)

	orchestrator.AddHook(func(ctx context.Context, exec *pipeline.BuildExecution) {
		if err := executionStore.Save(ctx, exec); err != nil {
			log.WithError(err).Error("execution record not persisted", map[string]interface{}{
				"execution_id": exec.ID,
			})
		}
	})
	orchestrator.AddHook(func(ctx context.Context, exec *pipeline.BuildExecution) {
		if err := traceIndexer.Index(ctx, exec); err != nil {
			log.WithError(err).Warn("execution trace not indexed", map[string]interface{}{
				"execution_id": exec.ID,
			})
		}
	})

	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		notifier, err := notify.NewNotifier(ctx, cfg.Notifications, log)
		if err != nil {
			zapLog.Warn("notifier init failed, completion notices disabled", zap.Error(err))
		} else {
			orchestrator.AddHook(func(ctx context.Context, exec *pipeline.BuildExecution) {
				if err := notifier.NotifyBuildFinished(ctx, exec); err != nil {
					log.WithError(err).Warn("completion notice not sent", map[string]interface{}{
						"execution_id": exec.ID,
					})
				}
			})
		}
	}

	// --- Background queue worker ---
	queue := buildqueue.New()
	queueWorker := buildqueue.NewWorker(
		queue,
		orchestrator,
		config.GetDuration(cfg.Pipeline.DrainInterval),
		config.GetDuration(cfg.Pipeline.DrainBackoff),
		log,
	)

	workerCtx, stopWorker := context.WithCancel(ctx)
	go queueWorker.Start(workerCtx)

	// --- HTTP API ---
	api := newAPIServer(orchestrator, queue, executionStore, log)
	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddress,
		Handler: api.routes(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopWorker()
	select {
	case <-queueWorker.Done():
	case <-shutdownCtx.Done():
		zapLog.Warn("queue worker did not stop in time")
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Build manager stopped")
}
