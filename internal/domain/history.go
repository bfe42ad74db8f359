package domain

import (
	"math"
	"time"
)

// HistoryEntry - снимок статистики одного запуска.
// Хранится в таблице optimization_history, новые записи первыми.
type HistoryEntry struct {
	ID                      int64     `json:"id" db:"id"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
	TotalLands              int       `json:"total_lands" db:"total_lands"`
	OccupiedLands           int       `json:"occupied_lands" db:"occupied_lands"`
	EmptyLands              int       `json:"empty_lands" db:"empty_lands"`
	TotalScenes             int       `json:"total_scenes" db:"total_scenes"`
	ScenesWithOptimized     int       `json:"scenes_with_optimized" db:"scenes_with_optimized"`
	ScenesWithoutOptimized  int       `json:"scenes_without_optimized" db:"scenes_without_optimized"`
	OptimizationPercentage  float64   `json:"optimization_percentage" db:"optimization_percentage"`
	ScenesWithReports       int       `json:"scenes_with_reports" db:"scenes_with_reports"`
	SuccessfulOptimizations int       `json:"successful_optimizations" db:"successful_optimizations"`
	FailedOptimizations     int       `json:"failed_optimizations" db:"failed_optimizations"`
	SnapshotKey             string    `json:"snapshot_key,omitempty" db:"snapshot_key"`
}

// NewHistoryEntry строит запись истории из статистики.
// Процент округляется до двух знаков под DECIMAL(5,2).
func NewHistoryEntry(stats Stats, snapshotKey string, at time.Time) HistoryEntry {
	return HistoryEntry{
		CreatedAt:               at.UTC(),
		TotalLands:              stats.TotalLands,
		OccupiedLands:           stats.OccupiedLands,
		EmptyLands:              stats.EmptyLands,
		TotalScenes:             stats.TotalScenes,
		ScenesWithOptimized:     stats.ScenesWithOptimizedAssets,
		ScenesWithoutOptimized:  stats.ScenesWithoutOptimizedAssets,
		OptimizationPercentage:  math.Round(stats.OptimizationPercentage*100) / 100,
		ScenesWithReports:       stats.ScenesWithReports,
		SuccessfulOptimizations: stats.SuccessfulOptimizations,
		FailedOptimizations:     stats.FailedOptimizations,
		SnapshotKey:             snapshotKey,
	}
}
