package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/grid"
	"github.com/optimization-report/internal/pkg/metrics"
)

const runLockKey = "lock:optimization-report:run"

// SceneSource - источник всех сцен сетки
type SceneSource interface {
	FetchAll(ctx context.Context) ([]domain.Scene, error)
}

// StatusResolver аннотирует сцены статусом оптимизации
type StatusResolver interface {
	Resolve(ctx context.Context, scenes []domain.Scene) ([]domain.Scene, ResolveStats, error)
}

// WorldsChecker проверяет именованные миры
type WorldsChecker interface {
	Check(ctx context.Context) ([]domain.WorldStatus, domain.WorldsStats, error)
}

// ReportPublisher загружает артефакт
type ReportPublisher interface {
	Publish(ctx context.Context, report *domain.CompressedReport, at time.Time) (*PublishResult, error)
}

// HistoryRecorder дописывает историю после публикации
type HistoryRecorder interface {
	Append(ctx context.Context, stats domain.Stats, snapshotKey string, at time.Time) (*domain.HistoryEntry, error)
}

// PipelineDeps - зависимости пайплайна. Worlds, History и Lock необязательны.
type PipelineDeps struct {
	Source    SceneSource
	Resolver  StatusResolver
	Worlds    WorldsChecker
	Publisher ReportPublisher
	History   HistoryRecorder
	// Lock - если задан, запуски сериализуются через блокировку в кеше
	Lock    repository.CacheRepository
	LockTTL time.Duration
}

// PipelineUseCase - один полный проход: каталог → статусы → сетка → статистика → артефакт
type PipelineUseCase struct {
	deps     PipelineDeps
	bounds   domain.GridBounds
	observer ProgressObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewPipelineUseCase создает новый PipelineUseCase
func NewPipelineUseCase(deps PipelineDeps, bounds domain.GridBounds, observer ProgressObserver, logger *zap.Logger) *PipelineUseCase {
	if observer == nil {
		observer = NopObserver{}
	}
	return &PipelineUseCase{
		deps:     deps,
		bounds:   bounds,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// Run выполняет запуск. При фатальной ошибке ничего не публикуется
// и предыдущий артефакт остаётся на месте. Запись истории после публикации
// выполняется отдельно и не влияет на результат запуска.
func (uc *PipelineUseCase) Run(ctx context.Context) (*domain.RunResult, error) {
	runID := uuid.NewString()
	startedAt := uc.now()
	ctx = WithRunID(ctx, runID)

	if uc.deps.Lock != nil {
		acquired, err := uc.deps.Lock.AcquireLock(ctx, runLockKey, runID, uc.deps.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !acquired {
			return nil, domain.ErrRunInProgress
		}
		defer func() {
			if err := uc.deps.Lock.ReleaseLock(context.WithoutCancel(ctx), runLockKey, runID); err != nil {
				uc.logger.Warn("Failed to release run lock",
					zap.String("run_id", runID),
					zap.Error(err))
			}
		}()
	}

	uc.observer.OnRunStarted(ctx, runID, startedAt)

	result, err := uc.run(ctx, runID)
	duration := uc.now().Sub(startedAt)

	uc.observer.OnRunFinished(ctx, RunSummary{
		RunID:     runID,
		StartedAt: startedAt,
		Duration:  duration,
		Success:   err == nil,
		Err:       err,
	})
	if err != nil {
		return nil, err
	}

	result.Duration = duration
	return result, nil
}

func (uc *PipelineUseCase) run(ctx context.Context, runID string) (*domain.RunResult, error) {
	scenes, err := uc.deps.Source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scenes: %w", err)
	}

	resolved, resolveStats, err := uc.deps.Resolver.Resolve(ctx, scenes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve optimization status: %w", err)
	}

	world, reconcile := grid.Reconcile(uc.bounds, resolved)
	if reconcile.Conflicts > 0 {
		metrics.OverlapConflictsTotal.Add(float64(reconcile.Conflicts))
		uc.logger.Warn("Parcels claimed by several scenes, last scene wins",
			zap.String("run_id", runID),
			zap.Int("conflicts", reconcile.Conflicts))
	}
	if reconcile.OutOfRange > 0 || reconcile.Malformed > 0 {
		uc.logger.Warn("Ignored pointers outside the grid",
			zap.String("run_id", runID),
			zap.Int("out_of_range", reconcile.OutOfRange),
			zap.Int("malformed", reconcile.Malformed))
	}

	stats := grid.ComputeStats(world)
	generatedAt := uc.now()
	report := grid.Compress(world, stats, generatedAt)

	if uc.deps.Worlds != nil {
		worlds, worldsStats, err := uc.deps.Worlds.Check(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			uc.logger.Warn("Worlds check failed, publishing without worlds",
				zap.String("run_id", runID),
				zap.Error(err))
		} else {
			report.Worlds = grid.CompressWorlds(worlds)
			report.WorldsStats = &worldsStats
		}
	}

	uc.logger.Info("Report built",
		zap.String("run_id", runID),
		zap.String("resolve_mode", resolveStats.Mode),
		zap.Int("scenes", stats.TotalScenes),
		zap.Int("occupied_lands", stats.OccupiedLands),
		zap.Float64("optimization_percentage", stats.OptimizationPercentage))

	uc.observer.OnProgress(ctx, newProgress(domain.StagePublish, 0, 1))
	published, err := uc.deps.Publisher.Publish(ctx, report, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}
	uc.observer.OnProgress(ctx, newProgress(domain.StagePublish, 1, 1))
	metrics.RecordPublished(generatedAt, stats.OptimizationPercentage)

	if uc.deps.History != nil {
		if _, err := uc.deps.History.Append(ctx, stats, published.SnapshotKey, generatedAt); err != nil {
			uc.logger.Warn("Failed to record history",
				zap.String("run_id", runID),
				zap.Error(err))
		}
	}

	return &domain.RunResult{
		RunID:       runID,
		Report:      report,
		Stats:       stats,
		Conflicts:   reconcile.Conflicts,
		OutOfRange:  reconcile.OutOfRange,
		Malformed:   reconcile.Malformed,
		SnapshotKey: published.SnapshotKey,
		Published:   true,
	}, nil
}
