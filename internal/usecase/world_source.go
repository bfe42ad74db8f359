package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/pkg/metrics"
	"github.com/optimization-report/internal/pkg/retry"
)

// WorldSourceOptions - параметры обхода каталога
type WorldSourceOptions struct {
	// BatchPointers - максимум указателей в одном запросе к каталогу
	BatchPointers int
	// RequestDelay - пауза между запросами регионов
	RequestDelay time.Duration
	Retry        *retry.Policy
}

// WorldSource собирает все сцены сетки, обходя её квадратными регионами
type WorldSource struct {
	sceneRepo repository.SceneRepository
	bounds    domain.GridBounds
	opts      WorldSourceOptions
	observer  ProgressObserver
	logger    *zap.Logger
}

// NewWorldSource создает новый WorldSource
func NewWorldSource(
	sceneRepo repository.SceneRepository,
	bounds domain.GridBounds,
	opts WorldSourceOptions,
	observer ProgressObserver,
	logger *zap.Logger,
) *WorldSource {
	if opts.Retry == nil {
		opts.Retry = retry.New(retry.WithLogger(logger))
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &WorldSource{
		sceneRepo: sceneRepo,
		bounds:    bounds,
		opts:      opts,
		observer:  observer,
		logger:    logger,
	}
}

// RegionSide - сторона квадратного региона: floor(sqrt(batchPointers))
func RegionSide(batchPointers int) int {
	side := int(math.Sqrt(float64(batchPointers)))
	if side < 1 {
		side = 1
	}
	return side
}

// Regions разбивает сетку на регионы; x во внешнем цикле, y во внутреннем.
// Крайние регионы обрезаются по границе сетки.
func (s *WorldSource) Regions() []domain.Region {
	side := RegionSide(s.opts.BatchPointers)
	var regions []domain.Region
	for x := s.bounds.Min; x <= s.bounds.Max; x += side {
		for y := s.bounds.Min; y <= s.bounds.Max; y += side {
			regions = append(regions, domain.Region{
				StartX: x,
				EndX:   min(x+side-1, s.bounds.Max),
				StartY: y,
				EndY:   min(y+side-1, s.bounds.Max),
			})
		}
	}
	return regions
}

// FetchAll запрашивает регионы последовательно. Регион, исчерпавший повторы,
// пропускается. Если не удалось получить ни одного региона - ErrAllRegionsFailed.
// Результат не дедуплицируется: сцена на стыке регионов придёт дважды.
func (s *WorldSource) FetchAll(ctx context.Context) ([]domain.Scene, error) {
	regions := s.Regions()
	limiter := newLimiter(s.opts.RequestDelay)

	s.logger.Info("Fetching scenes from directory",
		zap.Int("regions", len(regions)),
		zap.Int("region_side", RegionSide(s.opts.BatchPointers)))

	var (
		scenes []domain.Scene
		failed int
	)
	for i, region := range regions {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		batch, err := s.fetchRegion(ctx, region)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			metrics.RegionFailuresTotal.Inc()
			s.logger.Warn("Skipping directory region",
				zap.Int("start_x", region.StartX),
				zap.Int("end_x", region.EndX),
				zap.Int("start_y", region.StartY),
				zap.Int("end_y", region.EndY),
				zap.Error(err))
		} else {
			scenes = append(scenes, batch...)
		}

		s.observer.OnProgress(ctx, newProgress(domain.StageFetch, i+1, len(regions)))
	}

	if len(regions) > 0 && failed == len(regions) {
		return nil, domain.ErrAllRegionsFailed
	}

	s.logger.Info("Directory fetch completed",
		zap.Int("scenes", len(scenes)),
		zap.Int("failed_regions", failed))

	return scenes, nil
}

func (s *WorldSource) fetchRegion(ctx context.Context, region domain.Region) ([]domain.Scene, error) {
	pointers := region.Pointers()
	op := fmt.Sprintf("directory region %d,%d", region.StartX, region.StartY)

	var scenes []domain.Scene
	err := s.opts.Retry.Do(ctx, op, func(ctx context.Context) error {
		var err error
		scenes, err = s.sceneRepo.FetchScenes(ctx, pointers)
		return err
	})
	if err != nil {
		return nil, err
	}
	return scenes, nil
}

// newLimiter - пауза delay между последовательными запросами; первый проходит сразу
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
