package repository

import (
	"context"

	"github.com/optimization-report/internal/domain"
)

// BundleLister перечисляет оптимизированные бандлы одним проходом по бакету
type BundleLister interface {
	// ListOptimizedSceneIDs возвращает множество sceneId, для которых есть {id}-mobile.zip
	ListOptimizedSceneIDs(ctx context.Context) (map[string]struct{}, error)
}

// AssetProber - поштучные запросы к серверу оптимизированных ассетов
type AssetProber interface {
	// HasOptimizedBundle проверяет наличие бандла через HEAD
	HasOptimizedBundle(ctx context.Context, sceneID string) (bool, error)

	// FetchReport возвращает отчёт оптимизатора.
	// (nil, nil) - отчёта достоверно нет (404, другой 4xx, битое тело).
	// Ошибка возвращается только для временных сбоев.
	FetchReport(ctx context.Context, sceneID string) (*domain.OptimizationReport, error)
}
