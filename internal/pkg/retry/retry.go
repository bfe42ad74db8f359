package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Policy - экспоненциальные повторы с ограниченным числом попыток.
// Задержки: initialDelay, initialDelay*2, ... но не больше maxDelay.
type Policy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	logger       *zap.Logger
}

type Option func(*Policy)

// WithMaxAttempts задаёт общее число попыток, включая первую
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.initialDelay = d
	}
}

func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.maxDelay = d
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// New создаёт политику: 3 попытки, 1s с удвоением, потолок 10s
func New(opts ...Option) *Policy {
	p := &Policy{
		maxAttempts:  3,
		initialDelay: time.Second,
		maxDelay:     10 * time.Second,
		multiplier:   2,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.maxDelay < p.initialDelay {
		p.maxDelay = p.initialDelay
	}
	return p
}

func (p *Policy) MaxAttempts() int {
	return p.maxAttempts
}

// Delays возвращает последовательность пауз между попытками
func (p *Policy) Delays() []time.Duration {
	b := p.newBackOff()
	delays := make([]time.Duration, 0, p.maxAttempts-1)
	for i := 0; i < p.maxAttempts-1; i++ {
		delays = append(delays, b.NextBackOff())
	}
	return delays
}

func (p *Policy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialDelay
	b.Multiplier = p.multiplier
	b.MaxInterval = p.maxDelay
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Do выполняет fn, повторяя временные ошибки.
// Ошибки, обёрнутые в Permanent, возвращаются сразу.
func (p *Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), uint64(p.maxAttempts-1)), ctx)

	err := backoff.RetryNotify(func() error {
		attempt++
		return fn(ctx)
	}, b, func(err error, delay time.Duration) {
		p.logger.Debug("operation failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err))
	})
	if err != nil && attempt > 1 {
		p.logger.Warn("operation failed after retries",
			zap.String("op", op),
			zap.Int("attempts", attempt),
			zap.Error(err))
	}
	return err
}

// Permanent помечает ошибку как не подлежащую повтору
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent сообщает, была ли ошибка помечена через Permanent
func IsPermanent(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent)
}
