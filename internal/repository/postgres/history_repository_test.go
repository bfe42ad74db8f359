package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/repository/postgres/testhelpers"
)

// HistoryRepositoryTestSuite tests all methods of HistoryRepository
type HistoryRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.HistoryRepository
	ctx    context.Context
}

func (s *HistoryRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	err := testhelpers.ApplyMigrations(context.Background(), s.testDB.DB, s.testDB.Logger)
	s.Require().NoError(err, "Failed to apply migrations")

	s.repo = testhelpers.NewHistoryRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *HistoryRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

// SetupTest перезаливает фикстуры перед каждым тестом
func (s *HistoryRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	s.Require().NoError(s.testDB.Cleanup(s.ctx))
	err := testhelpers.LoadFixtures(s.testDB.DB.DB, "testdata/fixtures", []string{"optimization_history.sql"})
	s.Require().NoError(err, "Failed to load fixtures")
}

func (s *HistoryRepositoryTestSuite) TestList_NewestFirst() {
	entries, err := s.repo.List(s.ctx, 10)

	s.NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(33.98, entries[0].OptimizationPercentage)
	s.Equal(29.27, entries[2].OptimizationPercentage)
	s.Empty(entries[0].SnapshotKey)
	s.Equal("history/2025-01-01/2025-01-01T00-00-00-000Z.json", entries[2].SnapshotKey)
}

func (s *HistoryRepositoryTestSuite) TestList_Limit() {
	entries, err := s.repo.List(s.ctx, 1)

	s.NoError(err)
	s.Len(entries, 1)
}

func (s *HistoryRepositoryTestSuite) TestInsert_AssignsID() {
	at := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	entry := domain.NewHistoryEntry(domain.Stats{
		TotalLands:             9,
		OccupiedLands:          6,
		EmptyLands:             3,
		TotalScenes:            3,
		OptimizationPercentage: 33.333333,
	}, "history/2025-01-04/x.json", at)

	err := s.repo.Insert(s.ctx, &entry)
	s.Require().NoError(err)
	s.NotZero(entry.ID)

	entries, err := s.repo.List(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(entry.ID, entries[0].ID)
	s.Equal(33.33, entries[0].OptimizationPercentage)
	s.True(entries[0].CreatedAt.Equal(at))
}

func (s *HistoryRepositoryTestSuite) TestPrune_ReturnsRemoved() {
	removed, err := s.repo.Prune(s.ctx, 1)

	s.NoError(err)
	s.Require().Len(removed, 2)
	for _, entry := range removed {
		s.NotEqual(33.98, entry.OptimizationPercentage)
	}

	entries, err := s.repo.List(s.ctx, 10)
	s.NoError(err)
	s.Len(entries, 1)
}

func (s *HistoryRepositoryTestSuite) TestPrune_NothingToRemove() {
	removed, err := s.repo.Prune(s.ctx, 60)

	s.NoError(err)
	s.Empty(removed)
}

func TestHistoryRepositorySuite(t *testing.T) {
	suite.Run(t, new(HistoryRepositoryTestSuite))
}
