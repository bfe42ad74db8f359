package repository

import (
	"context"

	"github.com/optimization-report/internal/domain"
)

// HistoryRepository хранит снимки статистики запусков
type HistoryRepository interface {
	// Insert добавляет запись и заполняет её ID
	Insert(ctx context.Context, entry *domain.HistoryEntry) error

	// List возвращает последние записи, новые первыми
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Prune оставляет keep самых новых записей и возвращает удалённые
	Prune(ctx context.Context, keep int) ([]domain.HistoryEntry, error)
}
