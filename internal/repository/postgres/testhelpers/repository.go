package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewHistoryRepositoryForTest creates a history repository with test database and logger
func NewHistoryRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.HistoryRepository {
	return postgres.NewHistoryRepository(NewDBForTest(db, logger), logger)
}

// NewMonitoringRepositoryForTest creates a monitoring repository with test database and logger
func NewMonitoringRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.MonitoringRepository {
	return postgres.NewMonitoringRepository(NewDBForTest(db, logger), logger)
}
