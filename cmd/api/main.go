package main

// @title Optimization Report API
// @version 1.0.0
// @description Отчёт об оптимизации ассетов сцен Genesis City.
// @description
// @description Основные возможности:
// @description - Последний опубликованный отчёт и статус отдельного участка
// @description - История запусков конвейера
// @description - Мониторинг потребителей очереди оптимизации

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/optimization-report/docs"
	"github.com/optimization-report/internal/config"
	httpDelivery "github.com/optimization-report/internal/delivery/http"
	"github.com/optimization-report/internal/delivery/http/handler"
	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/infrastructure/objectstore"
	"github.com/optimization-report/internal/pkg/logger"
	"github.com/optimization-report/internal/repository/cache"
	"github.com/optimization-report/internal/repository/postgres"
	"github.com/optimization-report/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Optimization Report API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// 5. Object storage
	s3Client, err := objectstore.NewS3Client(ctx, &cfg.S3)
	if err != nil {
		log.Fatal("Failed to create S3 client", zap.Error(err))
	}

	// 6. Repositories
	historyRepo := postgres.NewHistoryRepository(db, log)
	monitoringRepo := postgres.NewMonitoringRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	reportStore := objectstore.NewReportStore(s3Client, cfg.S3.ReportBucket, cfg.S3.ReportPrefix, log)

	// 7. Use cases
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

	// 8. HTTP server
	bounds := domain.GridBounds{Min: cfg.Grid.MinCoord, Max: cfg.Grid.MaxCoord}
	server := httpDelivery.NewServer(cfg, log,
		httpDelivery.Handlers{
			Report:     handler.NewReportHandler(publishUC, bounds, log),
			History:    handler.NewHistoryHandler(historyUC, log),
			Monitoring: handler.NewMonitoringHandler(monitoringUC, log),
		},
		map[string]httpDelivery.HealthCheck{
			"postgres": db.Health,
			"redis":    redisClient.Health,
		},
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
