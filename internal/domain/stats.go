package domain

// Stats - агрегированная статистика по сетке
type Stats struct {
	TotalLands                   int     `json:"totalLands"`
	OccupiedLands                int     `json:"occupiedLands"`
	EmptyLands                   int     `json:"emptyLands"`
	TotalScenes                  int     `json:"totalScenes"`
	AverageLandsPerScene         float64 `json:"averageLandsPerScene"`
	ScenesWithOptimizedAssets    int     `json:"scenesWithOptimizedAssets"`
	ScenesWithoutOptimizedAssets int     `json:"scenesWithoutOptimizedAssets"`
	OptimizationPercentage       float64 `json:"optimizationPercentage"`
	ScenesWithReports            int     `json:"scenesWithReports"`
	SuccessfulOptimizations      int     `json:"successfulOptimizations"`
	FailedOptimizations          int     `json:"failedOptimizations"`
}
