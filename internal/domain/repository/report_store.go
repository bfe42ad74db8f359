package repository

import (
	"context"

	"github.com/optimization-report/internal/domain"
)

// ReportStore - объектное хранилище опубликованных артефактов
type ReportStore interface {
	// Put записывает объект целиком одним вызовом
	Put(ctx context.Context, obj domain.Object) error

	// Get читает объект; domain.ErrNotFound если его нет
	Get(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error
}
