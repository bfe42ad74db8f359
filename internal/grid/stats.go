package grid

import "github.com/optimization-report/internal/domain"

// ComputeStats - чистая функция от WorldData, проценты не округляются
func ComputeStats(world *domain.WorldData) domain.Stats {
	stats := domain.Stats{
		TotalLands:  len(world.Lands),
		TotalScenes: len(world.Scenes),
	}

	for i := range world.Lands {
		if world.Lands[i].Occupied() {
			stats.OccupiedLands++
		}
	}
	stats.EmptyLands = stats.TotalLands - stats.OccupiedLands

	for _, scene := range world.Scenes {
		if scene.HasOptimizedAssets {
			stats.ScenesWithOptimizedAssets++
		} else {
			stats.ScenesWithoutOptimizedAssets++
		}
		if scene.OptimizationReport != nil {
			stats.ScenesWithReports++
			if scene.OptimizationReport.Success {
				stats.SuccessfulOptimizations++
			} else {
				stats.FailedOptimizations++
			}
		}
	}

	if stats.TotalScenes > 0 {
		stats.AverageLandsPerScene = float64(stats.OccupiedLands) / float64(stats.TotalScenes)
		stats.OptimizationPercentage = float64(stats.ScenesWithOptimizedAssets) / float64(stats.TotalScenes) * 100
	}

	return stats
}
