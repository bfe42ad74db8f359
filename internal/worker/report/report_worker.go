package report

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/worker"
)

// Pipeline - один полный запуск построения отчёта
type Pipeline interface {
	Run(ctx context.Context) (*domain.RunResult, error)
}

// Options управляют расписанием
type Options struct {
	Interval   time.Duration
	RunOnStart bool
	// RunOnce - выполнить один запуск и завершиться
	RunOnce bool
}

// ReportWorker запускает пайплайн по расписанию.
// Следующий тик не начинается, пока не закончился предыдущий запуск.
type ReportWorker struct {
	*worker.BaseWorker
	pipeline Pipeline
	opts     Options
	lastErr  error
}

// NewReportWorker создает новый ReportWorker
func NewReportWorker(pipeline Pipeline, opts Options, logger *zap.Logger) *ReportWorker {
	return &ReportWorker{
		BaseWorker: worker.NewBaseWorker("optimization-report", "", logger),
		pipeline:   pipeline,
		opts:       opts,
	}
}

// Start запускает воркер
func (w *ReportWorker) Start(ctx context.Context) error {
	logger := w.Logger()

	if w.opts.RunOnce {
		logger.Info("Running optimization report once")
		return w.runOnce(ctx)
	}

	logger.Info("Starting report scheduler",
		zap.Duration("interval", w.opts.Interval),
		zap.Bool("run_on_start", w.opts.RunOnStart))

	if w.opts.RunOnStart {
		_ = w.runOnce(ctx)
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.C:
			_ = w.runOnce(ctx)
		}
	}
}

// LastError - ошибка последнего запуска, nil если он прошёл успешно
func (w *ReportWorker) LastError() error {
	return w.lastErr
}

func (w *ReportWorker) runOnce(ctx context.Context) error {
	logger := w.Logger()

	result, err := w.pipeline.Run(ctx)
	w.lastErr = err
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		logger.Info("Skipping run: another run is in progress")
		return err
	case err != nil:
		logger.Error("Optimization report run failed", zap.Error(err))
		return err
	}

	logger.Info("Optimization report published",
		zap.String("run_id", result.RunID),
		zap.Int("occupied_lands", result.Stats.OccupiedLands),
		zap.Int("total_scenes", result.Stats.TotalScenes),
		zap.Float64("optimization_percentage", result.Stats.OptimizationPercentage),
		zap.Int("conflicts", result.Conflicts),
		zap.String("snapshot_key", result.SnapshotKey),
		zap.Duration("duration", result.Duration))
	return nil
}
