package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
)

// SnapshotRemover удаляет снимки отчёта, вытесненные из истории
type SnapshotRemover interface {
	DeleteSnapshot(ctx context.Context, key string) error
}

// HistoryUseCase - ограниченная история запусков, новые первыми
type HistoryUseCase struct {
	historyRepo repository.HistoryRepository
	snapshots   SnapshotRemover
	retention   int
	logger      *zap.Logger
}

// NewHistoryUseCase создает новый HistoryUseCase. snapshots может быть nil.
func NewHistoryUseCase(
	historyRepo repository.HistoryRepository,
	snapshots SnapshotRemover,
	retention int,
	logger *zap.Logger,
) *HistoryUseCase {
	return &HistoryUseCase{
		historyRepo: historyRepo,
		snapshots:   snapshots,
		retention:   retention,
		logger:      logger,
	}
}

// Append добавляет запись и вытесняет всё, что старше retention последних.
// Снимки вытесненных записей удаляются из хранилища, сбои удаления только логируются.
func (uc *HistoryUseCase) Append(ctx context.Context, stats domain.Stats, snapshotKey string, at time.Time) (*domain.HistoryEntry, error) {
	entry := domain.NewHistoryEntry(stats, snapshotKey, at)
	if err := uc.historyRepo.Insert(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to insert history entry: %w", err)
	}

	pruned, err := uc.historyRepo.Prune(ctx, uc.retention)
	if err != nil {
		// запись уже сохранена, вытеснение повторится при следующем запуске
		uc.logger.Warn("Failed to prune history",
			zap.Int("retention", uc.retention),
			zap.Error(err))
		return &entry, nil
	}

	for _, old := range pruned {
		if old.SnapshotKey == "" || uc.snapshots == nil {
			continue
		}
		if err := uc.snapshots.DeleteSnapshot(ctx, old.SnapshotKey); err != nil {
			uc.logger.Warn("Failed to delete pruned snapshot",
				zap.Int64("entry_id", old.ID),
				zap.String("key", old.SnapshotKey),
				zap.Error(err))
		}
	}

	uc.logger.Info("History entry stored",
		zap.Int64("id", entry.ID),
		zap.Float64("optimization_percentage", entry.OptimizationPercentage),
		zap.Int("pruned", len(pruned)))

	return &entry, nil
}

// List возвращает не более limit последних записей (и не более retention)
func (uc *HistoryUseCase) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 || limit > uc.retention {
		limit = uc.retention
	}
	entries, err := uc.historyRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}
