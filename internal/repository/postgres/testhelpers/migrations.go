package testhelpers

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/repository/postgres"
)

// ApplyMigrations накатывает встроенную схему на тестовую БД
func ApplyMigrations(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if err := postgres.NewDBForTest(db, logger).Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
