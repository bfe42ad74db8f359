package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/pkg/metrics"
)

// ProgressEvent - прогресс одной стадии запуска
type ProgressEvent struct {
	Stage   string
	Done    int
	Total   int
	Percent int
}

// SceneCompletion - результат проверки одной сцены
type SceneCompletion struct {
	SceneID  string
	Stage    string
	Success  bool
	Duration time.Duration
	Err      error
}

// RunSummary - итог запуска для наблюдателей
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
}

// ProgressObserver получает события прогресса пайплайна.
// Вызовы синхронные, реализации не должны блокироваться надолго.
type ProgressObserver interface {
	OnRunStarted(ctx context.Context, runID string, startedAt time.Time)
	OnProgress(ctx context.Context, event ProgressEvent)
	OnSceneComplete(ctx context.Context, completion SceneCompletion)
	OnRunFinished(ctx context.Context, summary RunSummary)
}

func newProgress(stage string, done, total int) ProgressEvent {
	percent := 100
	if total > 0 {
		percent = done * 100 / total
	}
	return ProgressEvent{Stage: stage, Done: done, Total: total, Percent: percent}
}

type runIDKey struct{}

// WithRunID кладёт идентификатор запуска в контекст
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext возвращает идентификатор запуска или пустую строку
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// NopObserver игнорирует все события
type NopObserver struct{}

func (NopObserver) OnRunStarted(context.Context, string, time.Time) {}
func (NopObserver) OnProgress(context.Context, ProgressEvent) {}
func (NopObserver) OnSceneComplete(context.Context, SceneCompletion) {}
func (NopObserver) OnRunFinished(context.Context, RunSummary) {}

// MultiObserver рассылает события всем наблюдателям по порядку
type MultiObserver []ProgressObserver

func (m MultiObserver) OnRunStarted(ctx context.Context, runID string, startedAt time.Time) {
	for _, o := range m {
		o.OnRunStarted(ctx, runID, startedAt)
	}
}

func (m MultiObserver) OnProgress(ctx context.Context, event ProgressEvent) {
	for _, o := range m {
		o.OnProgress(ctx, event)
	}
}

func (m MultiObserver) OnSceneComplete(ctx context.Context, completion SceneCompletion) {
	for _, o := range m {
		o.OnSceneComplete(ctx, completion)
	}
}

func (m MultiObserver) OnRunFinished(ctx context.Context, summary RunSummary) {
	for _, o := range m {
		o.OnRunFinished(ctx, summary)
	}
}

// LogObserver пишет прогресс в лог
type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnRunStarted(ctx context.Context, runID string, startedAt time.Time) {
	o.logger.Info("Pipeline run started",
		zap.String("run_id", runID),
		zap.Time("started_at", startedAt))
}

func (o *LogObserver) OnProgress(ctx context.Context, event ProgressEvent) {
	o.logger.Info("Stage progress",
		zap.String("run_id", RunIDFromContext(ctx)),
		zap.String("stage", event.Stage),
		zap.Int("done", event.Done),
		zap.Int("total", event.Total),
		zap.Int("percent", event.Percent))
}

func (o *LogObserver) OnSceneComplete(ctx context.Context, completion SceneCompletion) {
	if completion.Err != nil {
		o.logger.Warn("Scene check failed",
			zap.String("scene_id", completion.SceneID),
			zap.String("stage", completion.Stage),
			zap.Duration("duration", completion.Duration),
			zap.Error(completion.Err))
		return
	}
	o.logger.Debug("Scene checked",
		zap.String("scene_id", completion.SceneID),
		zap.String("stage", completion.Stage),
		zap.Bool("success", completion.Success),
		zap.Duration("duration", completion.Duration))
}

func (o *LogObserver) OnRunFinished(ctx context.Context, summary RunSummary) {
	if summary.Err != nil {
		o.logger.Error("Pipeline run failed",
			zap.String("run_id", summary.RunID),
			zap.Duration("duration", summary.Duration),
			zap.Error(summary.Err))
		return
	}
	o.logger.Info("Pipeline run finished",
		zap.String("run_id", summary.RunID),
		zap.Duration("duration", summary.Duration))
}

// MetricsObserver обновляет prometheus-метрики
type MetricsObserver struct{}

func (MetricsObserver) OnRunStarted(context.Context, string, time.Time) {
	metrics.StageProgress.Reset()
}

func (MetricsObserver) OnProgress(_ context.Context, event ProgressEvent) {
	metrics.StageProgress.WithLabelValues(event.Stage).Set(float64(event.Percent))
}

func (MetricsObserver) OnSceneComplete(_ context.Context, completion SceneCompletion) {
	metrics.RecordSceneCheck(completion.Stage, completion.Err == nil, completion.Duration)
}

func (MetricsObserver) OnRunFinished(_ context.Context, summary RunSummary) {
	metrics.RecordRun(summary.Success, summary.Duration)
}

// StreamObserver публикует события в Redis Stream для monitor-воркера.
// Ошибки публикации только логируются: мониторинг не должен ронять запуск.
type StreamObserver struct {
	streamRepo repository.StreamRepository
	logger     *zap.Logger
	now        func() time.Time
	startedAt  time.Time
}

func NewStreamObserver(streamRepo repository.StreamRepository, logger *zap.Logger) *StreamObserver {
	return &StreamObserver{
		streamRepo: streamRepo,
		logger:     logger,
		now:        time.Now,
	}
}

func (o *StreamObserver) publish(ctx context.Context, event domain.PipelineEvent) {
	event.Timestamp = o.now().UTC()
	if event.RunID == "" {
		event.RunID = RunIDFromContext(ctx)
	}
	if event.StartedAt.IsZero() {
		event.StartedAt = o.startedAt
	}
	if err := o.streamRepo.PublishToStream(ctx, domain.StreamPipelineEvents, event); err != nil {
		o.logger.Warn("Failed to publish pipeline event",
			zap.String("type", event.Type),
			zap.String("run_id", event.RunID),
			zap.Error(err))
	}
}

func (o *StreamObserver) OnRunStarted(ctx context.Context, runID string, startedAt time.Time) {
	o.startedAt = startedAt.UTC()
	o.publish(ctx, domain.PipelineEvent{
		Type:      domain.EventRunStarted,
		RunID:     runID,
		StartedAt: o.startedAt,
	})
}

func (o *StreamObserver) OnProgress(ctx context.Context, event ProgressEvent) {
	o.publish(ctx, domain.PipelineEvent{
		Type:    domain.EventProgress,
		Stage:   event.Stage,
		Done:    event.Done,
		Total:   event.Total,
		Percent: event.Percent,
	})
}

// OnSceneComplete публикует только сбои: успешных проверок слишком много
func (o *StreamObserver) OnSceneComplete(ctx context.Context, completion SceneCompletion) {
	if completion.Err == nil {
		return
	}
	o.publish(ctx, domain.PipelineEvent{
		Type:       domain.EventSceneComplete,
		Stage:      completion.Stage,
		SceneID:    completion.SceneID,
		DurationMs: completion.Duration.Milliseconds(),
		Error:      completion.Err.Error(),
	})
}

func (o *StreamObserver) OnRunFinished(ctx context.Context, summary RunSummary) {
	event := domain.PipelineEvent{
		Type:       domain.EventRunFinished,
		RunID:      summary.RunID,
		Success:    summary.Success,
		DurationMs: summary.Duration.Milliseconds(),
		StartedAt:  summary.StartedAt.UTC(),
	}
	if summary.Err != nil {
		event.Error = summary.Err.Error()
	}
	o.publish(ctx, event)
}
