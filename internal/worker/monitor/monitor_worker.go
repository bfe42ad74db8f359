package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/worker"
)

const (
	maxBatchSize    = 50                     // максимум сообщений за раз
	emptyQueueSleep = 200 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second

	// ProcessMethod - метод обработки, под которым запуски видны в мониторинге
	ProcessMethod = "report"
	// RunSceneID - условный scene id для записи о запуске целиком
	RunSceneID = "optimization-report"
)

// Monitoring - то, что воркер пишет в таблицы мониторинга
type Monitoring interface {
	Heartbeat(ctx context.Context, hb domain.Heartbeat) error
	CompleteJob(ctx context.Context, job domain.JobCompletion) error
}

// PipelineMonitorWorker переносит события пайплайна из стрима в мониторинг:
// старт и прогресс становятся heartbeat, завершение - записью истории
type PipelineMonitorWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	monitoring Monitoring
}

// NewPipelineMonitorWorker создает новый PipelineMonitorWorker
func NewPipelineMonitorWorker(
	streamRepo repository.StreamRepository,
	monitoring Monitoring,
	consumerGroup string,
	logger *zap.Logger,
) *PipelineMonitorWorker {
	return &PipelineMonitorWorker{
		BaseWorker: worker.NewBaseWorker("pipeline-monitor", consumerGroup, logger),
		streamRepo: streamRepo,
		monitoring: monitoring,
	}
}

// Start запускает воркер
func (w *PipelineMonitorWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting PipelineMonitorWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamPipelineEvents, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.ProcessBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.sleep(ctx, errorSleep)
				continue
			}

			if processed == 0 {
				w.sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

// ProcessBatch читает и обрабатывает пачку событий.
// Возвращает количество прочитанных сообщений.
func (w *PipelineMonitorWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamPipelineEvents,
		w.ConsumerGroup(),
		w.ConsumerName(),
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	ackIDs := make([]string, 0, len(messages))
	for _, msg := range messages {
		var event domain.PipelineEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// битое сообщение подтверждаем, чтобы не застревало
			ackIDs = append(ackIDs, msg.ID)
			continue
		}

		if err := w.handle(ctx, event); err != nil {
			// не подтверждаем: сообщение останется в pending
			logger.Error("Failed to record pipeline event",
				zap.String("message_id", msg.ID),
				zap.String("type", event.Type),
				zap.String("run_id", event.RunID),
				zap.Error(err))
			continue
		}
		ackIDs = append(ackIDs, msg.ID)
	}

	if err := w.streamRepo.AckMessages(ctx, domain.StreamPipelineEvents, w.ConsumerGroup(), ackIDs); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
	}

	logger.Debug("Batch processed",
		zap.Int("messages", len(messages)),
		zap.Int("acked", len(ackIDs)))

	return len(messages), nil
}

func (w *PipelineMonitorWorker) handle(ctx context.Context, event domain.PipelineEvent) error {
	if event.RunID == "" {
		w.Logger().Debug("Event without run id ignored", zap.String("type", event.Type))
		return nil
	}

	switch event.Type {
	case domain.EventRunStarted, domain.EventProgress:
		return w.monitoring.Heartbeat(ctx, heartbeatFromEvent(event))

	case domain.EventRunFinished:
		return w.monitoring.CompleteJob(ctx, completionFromEvent(event))

	case domain.EventSceneComplete:
		w.Logger().Debug("Scene check failed",
			zap.String("run_id", event.RunID),
			zap.String("scene_id", event.SceneID),
			zap.String("stage", event.Stage),
			zap.String("error", event.Error))
		return nil

	default:
		w.Logger().Warn("Unknown pipeline event type", zap.String("type", event.Type))
		return nil
	}
}

func heartbeatFromEvent(event domain.PipelineEvent) domain.Heartbeat {
	hb := domain.Heartbeat{
		ConsumerID:      event.RunID,
		ProcessMethod:   ProcessMethod,
		Status:          domain.ConsumerStatusProcessing,
		CurrentSceneID:  RunSceneID,
		CurrentStep:     event.Stage,
		ProgressPercent: event.Percent,
	}
	if event.Type == domain.EventRunStarted {
		hb.CurrentStep = "started"
		hb.ProgressPercent = 0
	}
	if !event.StartedAt.IsZero() {
		started := event.StartedAt
		hb.StartedAt = &started
	}
	return hb
}

func completionFromEvent(event domain.PipelineEvent) domain.JobCompletion {
	status := domain.JobStatusFailed
	if event.Success {
		status = domain.JobStatusSuccess
	}

	completed := event.Timestamp
	if completed.IsZero() {
		completed = time.Now()
	}

	return domain.JobCompletion{
		ConsumerID:    event.RunID,
		SceneID:       RunSceneID,
		ProcessMethod: ProcessMethod,
		Status:        status,
		StartedAt:     event.StartedAt,
		CompletedAt:   completed,
		DurationMs:    event.DurationMs,
		ErrorMessage:  event.Error,
	}
}

func (w *PipelineMonitorWorker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	case <-w.StopChan():
	}
}
