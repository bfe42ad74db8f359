package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
)

// MonitoringUseCase - состояние потребителей пайплайна и очереди
type MonitoringUseCase struct {
	monitoringRepo repository.MonitoringRepository
	logger         *zap.Logger
	now            func() time.Time
}

// NewMonitoringUseCase создает новый MonitoringUseCase
func NewMonitoringUseCase(monitoringRepo repository.MonitoringRepository, logger *zap.Logger) *MonitoringUseCase {
	return &MonitoringUseCase{
		monitoringRepo: monitoringRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Heartbeat обновляет запись потребителя
func (uc *MonitoringUseCase) Heartbeat(ctx context.Context, hb domain.Heartbeat) error {
	if err := uc.monitoringRepo.UpsertHeartbeat(ctx, hb); err != nil {
		return fmt.Errorf("failed to upsert heartbeat: %w", err)
	}
	return nil
}

// CompleteJob сохраняет завершённую задачу и пересчитывает счётчики потребителя
func (uc *MonitoringUseCase) CompleteJob(ctx context.Context, job domain.JobCompletion) error {
	if job.CompletedAt.IsZero() {
		job.CompletedAt = uc.now().UTC()
	}
	if job.StartedAt.IsZero() {
		job.StartedAt = job.CompletedAt.Add(-time.Duration(job.DurationMs) * time.Millisecond)
	}
	if err := uc.monitoringRepo.RecordCompletion(ctx, job); err != nil {
		return fmt.Errorf("failed to record job completion: %w", err)
	}

	uc.logger.Debug("Job completion recorded",
		zap.String("consumer_id", job.ConsumerID),
		zap.String("scene_id", job.SceneID),
		zap.String("status", job.Status),
		zap.Int64("duration_ms", job.DurationMs))
	return nil
}

// QueueMetrics сохраняет замер глубины очереди
func (uc *MonitoringUseCase) QueueMetrics(ctx context.Context, depth int) error {
	if err := uc.monitoringRepo.RecordQueueDepth(ctx, depth, domain.QueueMetricsRetention); err != nil {
		return fmt.Errorf("failed to record queue depth: %w", err)
	}
	return nil
}

// Status собирает состояние для дашборда. Разделы независимы:
// ошибка одного логируется и оставляет его пустым.
// Попутно удаляются потребители без heartbeat дольше ConsumerExpireAfter
// и история задач старше ProcessHistoryRetention.
func (uc *MonitoringUseCase) Status(ctx context.Context) (*domain.MonitoringStatus, error) {
	now := uc.now()
	status := &domain.MonitoringStatus{
		QueueHistory:  []domain.QueueSample{},
		Consumers:     []domain.Consumer{},
		RecentHistory: []domain.ProcessRecord{},
	}

	queue, err := uc.monitoringRepo.LatestQueueSample(ctx)
	if err != nil {
		uc.logger.Warn("Failed to load queue sample", zap.Error(err))
	} else {
		status.Queue = queue
	}

	history, err := uc.monitoringRepo.QueueHistory(ctx, now.Add(-domain.QueueHistoryWindow))
	if err != nil {
		uc.logger.Warn("Failed to load queue history", zap.Error(err))
	} else if history != nil {
		status.QueueHistory = history
	}

	consumers, err := uc.monitoringRepo.ListConsumers(ctx)
	if err != nil {
		uc.logger.Warn("Failed to list consumers", zap.Error(err))
	} else {
		status.Consumers = ActiveConsumers(consumers, now)
		if _, err := uc.monitoringRepo.DeleteStaleConsumers(ctx, now.Add(-domain.ConsumerExpireAfter)); err != nil {
			uc.logger.Warn("Failed to delete stale consumers", zap.Error(err))
		}
	}

	recent, err := uc.monitoringRepo.RecentProcesses(ctx, domain.RecentHistoryLimit)
	if err != nil {
		uc.logger.Warn("Failed to load recent processes", zap.Error(err))
	} else {
		if recent != nil {
			status.RecentHistory = recent
		}

		processed, err := uc.monitoringRepo.CountSucceededSince(ctx, now.Add(-time.Hour))
		if err != nil {
			uc.logger.Warn("Failed to count processed jobs", zap.Error(err))
		}
		status.ProcessedLastHour = processed

		if _, err := uc.monitoringRepo.DeleteProcessesBefore(ctx, now.Add(-domain.ProcessHistoryRetention)); err != nil {
			uc.logger.Warn("Failed to delete old process history", zap.Error(err))
		}
	}

	return status, nil
}

// ActiveConsumers отбрасывает потребителей без heartbeat дольше ConsumerExpireAfter,
// а молчащих дольше ConsumerOfflineAfter помечает offline
func ActiveConsumers(consumers []domain.Consumer, now time.Time) []domain.Consumer {
	out := make([]domain.Consumer, 0, len(consumers))
	for _, c := range consumers {
		silence := now.Sub(c.LastHeartbeat)
		if silence >= domain.ConsumerExpireAfter {
			continue
		}
		if silence > domain.ConsumerOfflineAfter {
			c.Status = domain.ConsumerStatusOffline
		}
		out = append(out, c)
	}
	return out
}

// Ranking - самые долгие успешные задачи, rank с единицы
func (uc *MonitoringUseCase) Ranking(ctx context.Context) ([]domain.RankingEntry, error) {
	records, err := uc.monitoringRepo.SlowestSucceeded(ctx, domain.RankingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}

	ranking := make([]domain.RankingEntry, 0, len(records))
	for i, r := range records {
		ranking = append(ranking, domain.RankingEntry{Rank: i + 1, ProcessRecord: r})
	}
	return ranking, nil
}
