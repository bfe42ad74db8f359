package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// runBatches обрабатывает n элементов пачками по size: внутри пачки параллельно,
// между пачками пауза delay. fn получает индекс элемента и сам сохраняет результат.
// Ошибки fn не прерывают остальные элементы, наружу уходит только ошибка контекста.
// afterBatch (может быть nil) вызывается с размером завершённой пачки.
func runBatches(
	ctx context.Context,
	n, size int,
	delay time.Duration,
	fn func(ctx context.Context, i int),
	afterBatch func(n int),
) error {
	if size <= 0 {
		size = 1
	}
	limiter := newLimiter(delay)

	for start := 0; start < n; start += size {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		end := min(start+size, n)
		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				fn(ctx, i)
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return err
		}
		if afterBatch != nil {
			afterBatch(end - start)
		}
	}
	return nil
}
