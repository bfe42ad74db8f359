package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/usecase"
)

func newTestResolver(lister *MockBundleLister, prober *MockAssetProber) *usecase.OptimizationResolver {
	return usecase.NewOptimizationResolver(lister, prober, usecase.ResolverOptions{
		ProbeBatchSize:  2,
		ReportBatchSize: 2,
		ProbeRetry:      fastRetry(3),
		ReportRetry:     fastRetry(2),
	}, nil, zap.NewNop())
}

func TestResolver_BulkListing(t *testing.T) {
	lister := &MockBundleLister{}
	prober := &MockAssetProber{}

	lister.On("ListOptimizedSceneIDs", mock.Anything).Return(map[string]struct{}{"a": {}, "unrelated": {}}, nil)
	prober.On("FetchReport", mock.Anything, "b").Return(&domain.OptimizationReport{SceneID: "b", Success: false, Error: "boom"}, nil)
	prober.On("FetchReport", mock.Anything, "c").Return(nil, nil)

	input := []domain.Scene{
		{ID: "a", Pointers: []string{"0,0"}},
		{ID: "b", Pointers: []string{"1,0"}},
		{ID: "c", Pointers: []string{"2,0"}},
	}

	out, stats, err := newTestResolver(lister, prober).Resolve(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, usecase.ResolveModeBulk, stats.Mode)
	assert.Equal(t, 3, stats.Unique)
	assert.Equal(t, 1, stats.Optimized)
	assert.Equal(t, 1, stats.Reports)

	assert.True(t, out[0].HasOptimizedAssets)
	assert.Nil(t, out[0].OptimizationReport)
	assert.False(t, out[1].HasOptimizedAssets)
	require.NotNil(t, out[1].OptimizationReport)
	assert.False(t, out[1].OptimizationReport.Success)
	assert.False(t, out[2].HasOptimizedAssets)
	assert.Nil(t, out[2].OptimizationReport)

	// для оптимизированных сцен отчёт не запрашивается, HEAD не используется
	prober.AssertNotCalled(t, "FetchReport", mock.Anything, "a")
	prober.AssertNotCalled(t, "HasOptimizedBundle", mock.Anything, mock.Anything)
}

func TestResolver_FallbackToProbes(t *testing.T) {
	lister := &MockBundleLister{}
	prober := &MockAssetProber{}

	lister.On("ListOptimizedSceneIDs", mock.Anything).Return(nil, errors.New("credentials missing"))
	prober.On("HasOptimizedBundle", mock.Anything, "a").Return(true, nil)
	prober.On("HasOptimizedBundle", mock.Anything, "b").Return(false, nil)
	prober.On("HasOptimizedBundle", mock.Anything, "c").Return(false, errors.New("connection reset"))
	prober.On("FetchReport", mock.Anything, mock.Anything).Return(nil, nil)

	input := []domain.Scene{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out, stats, err := newTestResolver(lister, prober).Resolve(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, usecase.ResolveModeProbe, stats.Mode)
	assert.Equal(t, 1, stats.ProbeErrors)
	assert.True(t, out[0].HasOptimizedAssets)
	assert.False(t, out[1].HasOptimizedAssets)
	// сбой проверки = не оптимизирована
	assert.False(t, out[2].HasOptimizedAssets)

	prober.AssertNumberOfCalls(t, "HasOptimizedBundle", 1+1+3)
	prober.AssertNumberOfCalls(t, "FetchReport", 2)
}

func TestResolver_ReportRetryBudget(t *testing.T) {
	lister := &MockBundleLister{}
	prober := &MockAssetProber{}

	lister.On("ListOptimizedSceneIDs", mock.Anything).Return(map[string]struct{}{}, nil)
	// 404: отчёта нет, повтора нет
	prober.On("FetchReport", mock.Anything, "never").Return(nil, nil)
	// временный сбой: ровно две попытки
	prober.On("FetchReport", mock.Anything, "flaky").Return(nil, errors.New("503"))
	// временный сбой, затем успех
	prober.On("FetchReport", mock.Anything, "recovers").Return(nil, errors.New("timeout")).Once()
	prober.On("FetchReport", mock.Anything, "recovers").Return(&domain.OptimizationReport{SceneID: "recovers", Success: true}, nil)

	input := []domain.Scene{{ID: "never"}, {ID: "flaky"}, {ID: "recovers"}}
	out, stats, err := newTestResolver(lister, prober).Resolve(context.Background(), input)
	require.NoError(t, err)

	assert.Nil(t, out[0].OptimizationReport)
	assert.Nil(t, out[1].OptimizationReport)
	require.NotNil(t, out[2].OptimizationReport)
	assert.True(t, out[2].OptimizationReport.Success)
	assert.Equal(t, 1, stats.ReportErrors)

	prober.AssertNumberOfCalls(t, "FetchReport", 1+2+2)
}

func TestResolver_DuplicatesCheckedOnceAndCopied(t *testing.T) {
	lister := &MockBundleLister{}
	prober := &MockAssetProber{}

	lister.On("ListOptimizedSceneIDs", mock.Anything).Return(map[string]struct{}{}, nil)
	prober.On("FetchReport", mock.Anything, "dup").Return(&domain.OptimizationReport{
		SceneID: "dup",
		Success: true,
		Details: map[string]any{"size": 1},
	}, nil).Once()

	input := []domain.Scene{
		{ID: "dup", Pointers: []string{"0,0"}},
		{ID: "dup", Pointers: []string{"0,0", "0,1"}},
	}
	out, stats, err := newTestResolver(lister, prober).Resolve(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, stats.Unique)

	// каждая копия аннотирована и сохраняет свои указатели
	assert.Equal(t, []string{"0,0"}, out[0].Pointers)
	assert.Equal(t, []string{"0,0", "0,1"}, out[1].Pointers)
	require.NotNil(t, out[0].OptimizationReport)
	require.NotNil(t, out[1].OptimizationReport)

	// копии не разделяют память между собой и со входом
	out[0].OptimizationReport.Details["size"] = 2
	out[0].Pointers[0] = "9,9"
	assert.Equal(t, 1, out[1].OptimizationReport.Details["size"])
	assert.Equal(t, "0,0", input[0].Pointers[0])
	assert.Nil(t, input[0].OptimizationReport)

	prober.AssertNumberOfCalls(t, "FetchReport", 1)
}

func TestResolver_EmptyInput(t *testing.T) {
	lister := &MockBundleLister{}
	lister.On("ListOptimizedSceneIDs", mock.Anything).Return(map[string]struct{}{}, nil)

	out, stats, err := newTestResolver(lister, &MockAssetProber{}).Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, stats.Unique)
}
