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

func TestWorldsUseCase_Check(t *testing.T) {
	repo := &MockWorldsRepository{}
	prober := &MockAssetProber{}

	repo.On("FetchWorlds", mock.Anything).Return([]domain.World{
		{Name: "zeta.dcl.eth", Scenes: []domain.WorldScene{
			{ID: "z1", Title: "Zeta", Pointers: []string{"0,0", "0,1"}},
			{ID: "z2", Pointers: []string{"1,0"}},
		}},
		{Name: "empty.dcl.eth"},
		{Name: "alpha.dcl.eth", Scenes: []domain.WorldScene{
			{ID: "a1", Pointers: []string{"0,0"}},
		}},
		{Name: "beta.dcl.eth", Scenes: []domain.WorldScene{
			{ID: "b1", Title: "Beta", Thumbnail: "https://img/b1.png", Pointers: []string{"0,0"}},
		}},
	}, nil)
	prober.On("HasOptimizedBundle", mock.Anything, "z1").Return(true, nil)
	prober.On("HasOptimizedBundle", mock.Anything, "a1").Return(false, nil)
	prober.On("HasOptimizedBundle", mock.Anything, "b1").Return(false, errors.New("timeout"))

	uc := usecase.NewWorldsUseCase(repo, prober, 2, 0, nil, zap.NewNop())
	worlds, stats, err := uc.Check(context.Background())
	require.NoError(t, err)

	require.Len(t, worlds, 3)
	assert.Equal(t, "zeta.dcl.eth", worlds[0].Name)
	assert.True(t, worlds[0].HasOptimizedAssets)
	assert.Equal(t, 3, worlds[0].Parcels)
	assert.Equal(t, "z1", worlds[0].SceneID)
	assert.Equal(t, "Zeta", worlds[0].Title)

	assert.Equal(t, "alpha.dcl.eth", worlds[1].Name)
	assert.Equal(t, "Untitled", worlds[1].Title)
	assert.Equal(t, "beta.dcl.eth", worlds[2].Name)
	assert.False(t, worlds[2].HasOptimizedAssets)
	assert.Equal(t, "https://img/b1.png", worlds[2].Thumbnail)

	assert.Equal(t, domain.WorldsStats{
		TotalWorlds:            3,
		OptimizedWorlds:        1,
		NotOptimizedWorlds:     2,
		OptimizationPercentage: 33.3,
	}, stats)
}

func TestWorldsUseCase_FetchFailure(t *testing.T) {
	repo := &MockWorldsRepository{}
	repo.On("FetchWorlds", mock.Anything).Return(nil, errors.New("503"))

	uc := usecase.NewWorldsUseCase(repo, &MockAssetProber{}, 20, 0, nil, zap.NewNop())
	_, _, err := uc.Check(context.Background())
	assert.ErrorContains(t, err, "503")
}

func TestComputeWorldsStats(t *testing.T) {
	assert.Equal(t, domain.WorldsStats{}, usecase.ComputeWorldsStats(nil))

	worlds := []domain.WorldStatus{
		{HasOptimizedAssets: true},
		{HasOptimizedAssets: true},
		{},
	}
	assert.Equal(t, 66.7, usecase.ComputeWorldsStats(worlds).OptimizationPercentage)
}
