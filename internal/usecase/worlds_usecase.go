package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
)

const untitledWorld = "Untitled"

// WorldsUseCase проверяет оптимизацию именованных миров
type WorldsUseCase struct {
	worldsRepo repository.WorldsRepository
	prober     repository.AssetProber
	batchSize  int
	batchDelay time.Duration
	observer   ProgressObserver
	logger     *zap.Logger
}

// NewWorldsUseCase создает новый WorldsUseCase
func NewWorldsUseCase(
	worldsRepo repository.WorldsRepository,
	prober repository.AssetProber,
	batchSize int,
	batchDelay time.Duration,
	observer ProgressObserver,
	logger *zap.Logger,
) *WorldsUseCase {
	if observer == nil {
		observer = NopObserver{}
	}
	return &WorldsUseCase{
		worldsRepo: worldsRepo,
		prober:     prober,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		observer:   observer,
		logger:     logger,
	}
}

// Check загружает индекс миров и проверяет бандл основной (первой) сцены каждого мира.
// Миры без сцен пропускаются. Сбой проверки считается отсутствием бандла.
func (uc *WorldsUseCase) Check(ctx context.Context) ([]domain.WorldStatus, domain.WorldsStats, error) {
	worlds, err := uc.worldsRepo.FetchWorlds(ctx)
	if err != nil {
		return nil, domain.WorldsStats{}, fmt.Errorf("failed to fetch worlds: %w", err)
	}

	var withScenes []domain.World
	for _, w := range worlds {
		if len(w.Scenes) > 0 {
			withScenes = append(withScenes, w)
		}
	}

	uc.logger.Info("Checking worlds optimization",
		zap.Int("worlds", len(worlds)),
		zap.Int("with_scenes", len(withScenes)))

	results := make([]domain.WorldStatus, len(withScenes))
	done := 0
	err = runBatches(ctx, len(withScenes), uc.batchSize, uc.batchDelay, func(ctx context.Context, i int) {
		started := time.Now()
		status := newWorldStatus(withScenes[i])

		ok, err := uc.prober.HasOptimizedBundle(ctx, status.SceneID)
		status.HasOptimizedAssets = err == nil && ok
		results[i] = status

		uc.observer.OnSceneComplete(ctx, SceneCompletion{
			SceneID:  status.SceneID,
			Stage:    domain.StageWorlds,
			Success:  status.HasOptimizedAssets,
			Duration: time.Since(started),
			Err:      err,
		})
	}, func(n int) {
		done += n
		uc.observer.OnProgress(ctx, newProgress(domain.StageWorlds, done, len(withScenes)))
	})
	if err != nil {
		return nil, domain.WorldsStats{}, err
	}

	SortWorlds(results)
	stats := ComputeWorldsStats(results)

	uc.logger.Info("Worlds optimization checked",
		zap.Int("total", stats.TotalWorlds),
		zap.Int("optimized", stats.OptimizedWorlds),
		zap.Float64("percentage", stats.OptimizationPercentage))

	return results, stats, nil
}

func newWorldStatus(w domain.World) domain.WorldStatus {
	primary := w.Scenes[0]
	title := primary.Title
	if title == "" {
		title = untitledWorld
	}

	parcels := 0
	for _, s := range w.Scenes {
		parcels += len(s.Pointers)
	}

	return domain.WorldStatus{
		Name:      w.Name,
		SceneID:   primary.ID,
		Title:     title,
		Thumbnail: primary.Thumbnail,
		Parcels:   parcels,
	}
}

// SortWorlds - сначала оптимизированные, затем по имени
func SortWorlds(worlds []domain.WorldStatus) {
	sort.SliceStable(worlds, func(i, j int) bool {
		if worlds[i].HasOptimizedAssets != worlds[j].HasOptimizedAssets {
			return worlds[i].HasOptimizedAssets
		}
		return worlds[i].Name < worlds[j].Name
	})
}

// ComputeWorldsStats считает сводку; процент округляется до одного знака
func ComputeWorldsStats(worlds []domain.WorldStatus) domain.WorldsStats {
	stats := domain.WorldsStats{TotalWorlds: len(worlds)}
	for _, w := range worlds {
		if w.HasOptimizedAssets {
			stats.OptimizedWorlds++
		}
	}
	stats.NotOptimizedWorlds = stats.TotalWorlds - stats.OptimizedWorlds
	if stats.TotalWorlds > 0 {
		ratio := float64(stats.OptimizedWorlds) / float64(stats.TotalWorlds)
		stats.OptimizationPercentage = math.Round(ratio*1000) / 10
	}
	return stats
}
