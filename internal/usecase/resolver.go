package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/pkg/retry"
)

const (
	ResolveModeBulk  = "bulk"
	ResolveModeProbe = "probe"
)

// ResolverOptions - размеры пачек и бюджеты повторов для проверок
type ResolverOptions struct {
	ProbeBatchSize   int
	ProbeBatchDelay  time.Duration
	ReportBatchSize  int
	ReportBatchDelay time.Duration
	// ProbeRetry - повторы HEAD-проверок в fallback-режиме
	ProbeRetry *retry.Policy
	// ReportRetry - короткий бюджет для отчётов (по умолчанию 2 попытки)
	ReportRetry *retry.Policy
}

// ResolveStats - сводка одного прохода резолвера
type ResolveStats struct {
	Mode         string
	Unique       int
	Optimized    int
	ProbeErrors  int
	Reports      int
	ReportErrors int
}

// OptimizationResolver определяет статус оптимизации для каждой сцены
type OptimizationResolver struct {
	lister   repository.BundleLister
	prober   repository.AssetProber
	opts     ResolverOptions
	observer ProgressObserver
	logger   *zap.Logger
}

// NewOptimizationResolver создает новый OptimizationResolver
func NewOptimizationResolver(
	lister repository.BundleLister,
	prober repository.AssetProber,
	opts ResolverOptions,
	observer ProgressObserver,
	logger *zap.Logger,
) *OptimizationResolver {
	if opts.ProbeBatchSize <= 0 {
		opts.ProbeBatchSize = 10
	}
	if opts.ReportBatchSize <= 0 {
		opts.ReportBatchSize = 20
	}
	if opts.ProbeRetry == nil {
		opts.ProbeRetry = retry.New(retry.WithLogger(logger))
	}
	if opts.ReportRetry == nil {
		opts.ReportRetry = retry.New(retry.WithMaxAttempts(2), retry.WithLogger(logger))
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &OptimizationResolver{
		lister:   lister,
		prober:   prober,
		opts:     opts,
		observer: observer,
		logger:   logger,
	}
}

// Resolve возвращает свежие копии всех входных сцен (включая дубликаты)
// с заполненными HasOptimizedAssets и OptimizationReport.
// Сетевые проверки выполняются один раз на уникальный id.
func (r *OptimizationResolver) Resolve(ctx context.Context, scenes []domain.Scene) ([]domain.Scene, ResolveStats, error) {
	unique, order := dedupe(scenes)
	stats := ResolveStats{Unique: len(order)}

	optimized, mode, probeErrors, err := r.resolveBundles(ctx, order)
	if err != nil {
		return nil, stats, err
	}
	stats.Mode = mode
	stats.ProbeErrors = probeErrors

	var pending []string
	for _, id := range order {
		if optimized[id] {
			stats.Optimized++
			continue
		}
		pending = append(pending, id)
	}

	reports, reportErrors, err := r.fetchReports(ctx, pending)
	if err != nil {
		return nil, stats, err
	}
	stats.Reports = len(reports)
	stats.ReportErrors = reportErrors

	for _, id := range order {
		s := unique[id]
		s.HasOptimizedAssets = optimized[id]
		s.OptimizationReport = reports[id]
		unique[id] = s
	}

	out := make([]domain.Scene, len(scenes))
	for i, s := range scenes {
		annotated := unique[s.ID]
		fresh := s
		fresh.HasOptimizedAssets = annotated.HasOptimizedAssets
		fresh.OptimizationReport = annotated.OptimizationReport
		out[i] = fresh.Clone()
	}

	r.logger.Info("Optimization status resolved",
		zap.String("mode", stats.Mode),
		zap.Int("unique_scenes", stats.Unique),
		zap.Int("optimized", stats.Optimized),
		zap.Int("reports", stats.Reports),
		zap.Int("probe_errors", stats.ProbeErrors),
		zap.Int("report_errors", stats.ReportErrors))

	return out, stats, nil
}

// dedupe - последняя копия id побеждает, порядок по первому появлению
func dedupe(scenes []domain.Scene) (map[string]domain.Scene, []string) {
	unique := make(map[string]domain.Scene, len(scenes))
	order := make([]string, 0, len(scenes))
	for _, s := range scenes {
		if _, seen := unique[s.ID]; !seen {
			order = append(order, s.ID)
		}
		unique[s.ID] = s
	}
	return unique, order
}

func (r *OptimizationResolver) resolveBundles(ctx context.Context, ids []string) (map[string]bool, string, int, error) {
	listed, err := r.lister.ListOptimizedSceneIDs(ctx)
	if err == nil {
		optimized := make(map[string]bool, len(ids))
		for _, id := range ids {
			_, ok := listed[id]
			optimized[id] = ok
		}
		r.observer.OnProgress(ctx, newProgress(domain.StageProbe, len(ids), len(ids)))
		return optimized, ResolveModeBulk, 0, nil
	}
	if ctx.Err() != nil {
		return nil, "", 0, ctx.Err()
	}

	r.logger.Warn("Bulk bundle listing failed, falling back to per-scene probes",
		zap.Int("scenes", len(ids)),
		zap.Error(err))

	optimized, errs, err := r.probeAll(ctx, ids)
	return optimized, ResolveModeProbe, errs, err
}

func (r *OptimizationResolver) probeAll(ctx context.Context, ids []string) (map[string]bool, int, error) {
	results := make([]bool, len(ids))
	failures := make([]error, len(ids))

	done := 0
	err := runBatches(ctx, len(ids), r.opts.ProbeBatchSize, r.opts.ProbeBatchDelay, func(ctx context.Context, i int) {
		id := ids[i]
		started := time.Now()
		err := r.opts.ProbeRetry.Do(ctx, fmt.Sprintf("probe %s", id), func(ctx context.Context) error {
			ok, err := r.prober.HasOptimizedBundle(ctx, id)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
		failures[i] = err
		r.observer.OnSceneComplete(ctx, SceneCompletion{
			SceneID:  id,
			Stage:    domain.StageProbe,
			Success:  results[i],
			Duration: time.Since(started),
			Err:      err,
		})
	}, func(n int) {
		done += n
		r.observer.OnProgress(ctx, newProgress(domain.StageProbe, done, len(ids)))
	})
	if err != nil {
		return nil, 0, err
	}

	optimized := make(map[string]bool, len(ids))
	errs := 0
	for i, id := range ids {
		// сбой проверки = нет оптимизированных ассетов
		optimized[id] = failures[i] == nil && results[i]
		if failures[i] != nil {
			errs++
		}
	}
	return optimized, errs, nil
}

// fetchReports загружает отчёты для неоптимизированных сцен.
// Отсутствие отчёта - нормальная ситуация и не считается ошибкой.
func (r *OptimizationResolver) fetchReports(ctx context.Context, ids []string) (map[string]*domain.OptimizationReport, int, error) {
	results := make([]*domain.OptimizationReport, len(ids))
	failures := make([]error, len(ids))

	done := 0
	err := runBatches(ctx, len(ids), r.opts.ReportBatchSize, r.opts.ReportBatchDelay, func(ctx context.Context, i int) {
		id := ids[i]
		started := time.Now()
		err := r.opts.ReportRetry.Do(ctx, fmt.Sprintf("report %s", id), func(ctx context.Context) error {
			report, err := r.prober.FetchReport(ctx, id)
			if err != nil {
				return err
			}
			results[i] = report
			return nil
		})
		failures[i] = err
		r.observer.OnSceneComplete(ctx, SceneCompletion{
			SceneID:  id,
			Stage:    domain.StageReports,
			Success:  results[i] != nil && results[i].Success,
			Duration: time.Since(started),
			Err:      err,
		})
	}, func(n int) {
		done += n
		r.observer.OnProgress(ctx, newProgress(domain.StageReports, done, len(ids)))
	})
	if err != nil {
		return nil, 0, err
	}

	reports := make(map[string]*domain.OptimizationReport)
	errs := 0
	for i, id := range ids {
		if failures[i] != nil {
			errs++
			continue
		}
		if results[i] != nil {
			reports[id] = results[i]
		}
	}
	return reports, errs, nil
}
