package repository

import (
	"context"
	"time"

	"github.com/optimization-report/internal/domain"
)

// MonitoringRepository - таблицы мониторинга потребителей пайплайна
type MonitoringRepository interface {
	// UpsertHeartbeat создаёт или обновляет запись потребителя
	UpsertHeartbeat(ctx context.Context, hb domain.Heartbeat) error

	// RecordCompletion сохраняет историю и обновляет счётчики потребителя
	RecordCompletion(ctx context.Context, job domain.JobCompletion) error

	// RecordQueueDepth добавляет замер и оставляет retain последних
	RecordQueueDepth(ctx context.Context, depth int, retain int) error

	LatestQueueSample(ctx context.Context) (*domain.QueueSample, error)

	// QueueHistory - по одному замеру на двухчасовое окно
	QueueHistory(ctx context.Context, since time.Time) ([]domain.QueueSample, error)

	ListConsumers(ctx context.Context) ([]domain.Consumer, error)

	DeleteStaleConsumers(ctx context.Context, before time.Time) (int64, error)

	RecentProcesses(ctx context.Context, limit int) ([]domain.ProcessRecord, error)

	CountSucceededSince(ctx context.Context, since time.Time) (int, error)

	DeleteProcessesBefore(ctx context.Context, before time.Time) (int64, error)

	// SlowestSucceeded - самые долгие успешные задачи
	SlowestSucceeded(ctx context.Context, limit int) ([]domain.ProcessRecord, error)
}
