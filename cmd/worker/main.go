package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/config"
	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/infrastructure/catalyst"
	"github.com/optimization-report/internal/infrastructure/objectstore"
	"github.com/optimization-report/internal/infrastructure/optimizer"
	"github.com/optimization-report/internal/pkg/logger"
	"github.com/optimization-report/internal/pkg/retry"
	"github.com/optimization-report/internal/repository/cache"
	"github.com/optimization-report/internal/repository/postgres"
	redisRepo "github.com/optimization-report/internal/repository/redis"
	"github.com/optimization-report/internal/usecase"
	"github.com/optimization-report/internal/worker"
	"github.com/optimization-report/internal/worker/monitor"
	"github.com/optimization-report/internal/worker/report"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Optimization Report Worker")
	log.Info("Configuration loaded",
		zap.Bool("run_once", cfg.Worker.RunOnce),
		zap.Duration("interval", cfg.Worker.Interval),
		zap.Int("grid_min", cfg.Grid.MinCoord),
		zap.Int("grid_max", cfg.Grid.MaxCoord),
		zap.Bool("worlds_enabled", cfg.Worlds.Enabled),
		zap.Bool("monitor_enabled", cfg.Worker.MonitorEnabled))

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()
	if err := db.Migrate(initCtx); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. External services
	s3Client, err := objectstore.NewS3Client(initCtx, &cfg.S3)
	if err != nil {
		log.Fatal("Failed to create S3 client", zap.Error(err))
	}
	sceneRepo := catalyst.NewDirectoryClient(&cfg.Directory, log)
	prober := optimizer.NewClient(&cfg.Assets, log)
	lister := objectstore.NewBundleLister(s3Client, cfg.S3.AssetBucket, cfg.S3.AssetPrefix, log)
	reportStore := objectstore.NewReportStore(s3Client, cfg.S3.ReportBucket, cfg.S3.ReportPrefix, log)

	// 6. Repositories
	historyRepo := postgres.NewHistoryRepository(db, log)
	monitoringRepo := postgres.NewMonitoringRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepositoryWithBlock(redisClient.Client(), log, cfg.Worker.StreamReadTimeout)

	// 7. Use cases
	observer := usecase.MultiObserver{
		usecase.NewLogObserver(log),
		usecase.MetricsObserver{},
		usecase.NewStreamObserver(streamRepo, log),
	}
	bounds := domain.GridBounds{Min: cfg.Grid.MinCoord, Max: cfg.Grid.MaxCoord}
	retryPolicy := retry.New(
		retry.WithMaxAttempts(cfg.Retry.MaxAttempts),
		retry.WithInitialDelay(cfg.Retry.InitialDelay),
		retry.WithMaxDelay(cfg.Retry.MaxDelay),
		retry.WithLogger(log),
	)

	source := usecase.NewWorldSource(sceneRepo, bounds, usecase.WorldSourceOptions{
		BatchPointers: cfg.Directory.BatchPointers,
		RequestDelay:  cfg.Directory.RequestDelay,
		Retry:         retryPolicy,
	}, observer, log)

	resolver := usecase.NewOptimizationResolver(lister, prober, usecase.ResolverOptions{
		ProbeBatchSize:   cfg.Assets.ProbeBatchSize,
		ProbeBatchDelay:  cfg.Assets.ProbeBatchDelay,
		ReportBatchSize:  cfg.Assets.ReportBatchSize,
		ReportBatchDelay: cfg.Assets.ReportBatchDelay,
		ProbeRetry:       retryPolicy,
		ReportRetry: retry.New(
			retry.WithMaxAttempts(cfg.Assets.ReportMaxAttempts),
			retry.WithInitialDelay(cfg.Retry.InitialDelay),
			retry.WithMaxDelay(cfg.Retry.MaxDelay),
			retry.WithLogger(log),
		),
	}, observer, log)

	publishUC := usecase.NewPublishUseCase(
		reportStore,
		cacheRepo,
		cfg.S3.PublicURL,
		cfg.S3.ReportPrefix,
		cfg.Cache.MetadataTTL,
		log,
	)
	historyUC := usecase.NewHistoryUseCase(historyRepo, publishUC, cfg.History.Retention, log)
	monitoringUC := usecase.NewMonitoringUseCase(monitoringRepo, log)

	deps := usecase.PipelineDeps{
		Source:    source,
		Resolver:  resolver,
		Publisher: publishUC,
		History:   historyUC,
	}
	if cfg.Worlds.Enabled {
		worldsRepo := catalyst.NewWorldsClient(&cfg.Worlds, log)
		deps.Worlds = usecase.NewWorldsUseCase(worldsRepo, prober, cfg.Worlds.BatchSize, cfg.Worlds.BatchDelay, observer, log)
	}
	if cfg.Cache.RunLock {
		deps.Lock = cacheRepo
		deps.LockTTL = cfg.Cache.RunLockTTL
	}
	pipeline := usecase.NewPipelineUseCase(deps, bounds, observer, log)

	// 8. Initialize workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(report.NewReportWorker(pipeline, report.Options{
		Interval:   cfg.Worker.Interval,
		RunOnStart: cfg.Worker.RunOnStart,
		RunOnce:    cfg.Worker.RunOnce,
	}, log))
	// в режиме одного запуска события остаются в стриме до следующего монитора
	if cfg.Worker.MonitorEnabled && !cfg.Worker.RunOnce {
		workerManager.Register(monitor.NewPipelineMonitorWorker(streamRepo, monitoringUC, cfg.Worker.ConsumerGroup, log))
	}

	// 9. Metrics endpoint
	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		log.Info("Metrics server started", zap.String("addr", cfg.Metrics.Addr))
	}

	// 10. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	if cfg.Worker.RunOnce {
		done := make(chan error, 1)
		go func() { done <- workerManager.Wait() }()

		select {
		case err := <-done:
			if err != nil {
				log.Error("Pipeline run failed", zap.Error(err))
				exitCode = 1
			}
		case <-sigChan:
			log.Info("Received shutdown signal")
			cancel()
			if err := workerManager.Stop(); err != nil {
				log.Error("Error stopping workers", zap.Error(err))
			}
			exitCode = 1
		}
	} else {
		<-sigChan
		log.Info("Received shutdown signal")

		cancel()
		if err := workerManager.Stop(); err != nil {
			log.Error("Error stopping workers", zap.Error(err))
		}
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown error", zap.Error(err))
		}
		shutdownCancel()
	}

	log.Info("Worker shutdown complete")
	if exitCode != 0 {
		log.Sync()
		os.Exit(exitCode)
	}
}
