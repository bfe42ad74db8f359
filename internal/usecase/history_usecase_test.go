package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/usecase"
)

type MockSnapshotRemover struct {
	mock.Mock
}

func (m *MockSnapshotRemover) DeleteSnapshot(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestHistoryUseCase_Append(t *testing.T) {
	repo := &MockHistoryRepository{}
	snapshots := &MockSnapshotRemover{}
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	stats := domain.Stats{TotalLands: 9, OccupiedLands: 6, TotalScenes: 3, OptimizationPercentage: 33.33333}

	repo.On("Insert", mock.Anything, mock.AnythingOfType("*domain.HistoryEntry")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.HistoryEntry).ID = 61
	}).Return(nil)
	repo.On("Prune", mock.Anything, 60).Return([]domain.HistoryEntry{
		{ID: 1, SnapshotKey: "history/2025-01-01/a.json"},
		{ID: 2},
		{ID: 3, SnapshotKey: "history/2025-01-02/b.json"},
	}, nil)
	snapshots.On("DeleteSnapshot", mock.Anything, "history/2025-01-01/a.json").Return(errors.New("gone"))
	snapshots.On("DeleteSnapshot", mock.Anything, "history/2025-01-02/b.json").Return(nil)

	uc := usecase.NewHistoryUseCase(repo, snapshots, 60, zap.NewNop())
	entry, err := uc.Append(context.Background(), stats, "history/2025-03-01/c.json", at)
	require.NoError(t, err)

	assert.Equal(t, int64(61), entry.ID)
	assert.Equal(t, 33.33, entry.OptimizationPercentage)
	assert.Equal(t, "history/2025-03-01/c.json", entry.SnapshotKey)
	assert.True(t, entry.CreatedAt.Equal(at))
	snapshots.AssertNumberOfCalls(t, "DeleteSnapshot", 2)
}

func TestHistoryUseCase_InsertFailure(t *testing.T) {
	repo := &MockHistoryRepository{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

	uc := usecase.NewHistoryUseCase(repo, nil, 60, zap.NewNop())
	_, err := uc.Append(context.Background(), domain.Stats{}, "", time.Now())
	assert.ErrorContains(t, err, "db down")
	repo.AssertNotCalled(t, "Prune", mock.Anything, mock.Anything)
}

func TestHistoryUseCase_PruneFailureKeepsEntry(t *testing.T) {
	repo := &MockHistoryRepository{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("Prune", mock.Anything, 60).Return(nil, errors.New("lock timeout"))

	uc := usecase.NewHistoryUseCase(repo, nil, 60, zap.NewNop())
	entry, err := uc.Append(context.Background(), domain.Stats{}, "", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestHistoryUseCase_ListClampsLimit(t *testing.T) {
	repo := &MockHistoryRepository{}
	repo.On("List", mock.Anything, 60).Return([]domain.HistoryEntry{{ID: 2}, {ID: 1}}, nil).Twice()
	repo.On("List", mock.Anything, 10).Return([]domain.HistoryEntry{{ID: 2}}, nil).Once()

	uc := usecase.NewHistoryUseCase(repo, nil, 60, zap.NewNop())
	ctx := context.Background()

	entries, err := uc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = uc.List(ctx, 500)
	require.NoError(t, err)

	entries, err = uc.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	repo.AssertExpectations(t)
}
