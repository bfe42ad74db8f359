package report_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/worker/report"
)

type fakePipeline struct {
	calls atomic.Int32
	err   error
}

func (p *fakePipeline) Run(ctx context.Context) (*domain.RunResult, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &domain.RunResult{RunID: "run", Published: true}, nil
}

func TestReportWorker_Name(t *testing.T) {
	w := report.NewReportWorker(&fakePipeline{}, report.Options{Interval: time.Hour}, zap.NewNop())
	assert.Equal(t, "optimization-report", w.Name())
}

func TestReportWorker_RunOnce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p := &fakePipeline{}
		w := report.NewReportWorker(p, report.Options{RunOnce: true}, zap.NewNop())

		require.NoError(t, w.Start(context.Background()))
		assert.Equal(t, int32(1), p.calls.Load())
	})

	t.Run("failure is returned", func(t *testing.T) {
		p := &fakePipeline{err: domain.ErrAllRegionsFailed}
		w := report.NewReportWorker(p, report.Options{RunOnce: true}, zap.NewNop())

		err := w.Start(context.Background())
		assert.ErrorIs(t, err, domain.ErrAllRegionsFailed)
		assert.ErrorIs(t, w.LastError(), domain.ErrAllRegionsFailed)
	})
}

func TestReportWorker_Schedule(t *testing.T) {
	p := &fakePipeline{err: errors.New("directory down")}
	w := report.NewReportWorker(p, report.Options{Interval: 10 * time.Millisecond, RunOnStart: true}, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	// ошибки запусков не останавливают расписание
	assert.Eventually(t, func() bool { return p.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestReportWorker_ContextCancel(t *testing.T) {
	p := &fakePipeline{}
	w := report.NewReportWorker(p, report.Options{Interval: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), p.calls.Load())
}
