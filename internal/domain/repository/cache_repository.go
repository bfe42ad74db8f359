package repository

import (
	"context"
	"time"

	"github.com/optimization-report/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetMetadata получает метаданные последнего отчёта; nil при промахе
	GetMetadata(ctx context.Context) (*domain.ReportMetadata, error)

	// SetMetadata сохраняет метаданные последнего отчёта
	SetMetadata(ctx context.Context, meta *domain.ReportMetadata, ttl time.Duration) error

	// AcquireLock пытается взять блокировку; false если она занята
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// ReleaseLock снимает блокировку, только если ей владеет owner
	ReleaseLock(ctx context.Context, key, owner string) error
}
