package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
)

const historyColumns = `id, created_at, total_lands, occupied_lands, empty_lands, total_scenes,
	scenes_with_optimized, scenes_without_optimized, optimization_percentage,
	scenes_with_reports, successful_optimizations, failed_optimizations, snapshot_key`

type historyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewHistoryRepository создает репозиторий истории запусков
func NewHistoryRepository(db *DB, logger *zap.Logger) repository.HistoryRepository {
	return &historyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *historyRepository) Insert(ctx context.Context, entry *domain.HistoryEntry) error {
	query := `
		INSERT INTO optimization_history (
			created_at, total_lands, occupied_lands, empty_lands, total_scenes,
			scenes_with_optimized, scenes_without_optimized, optimization_percentage,
			scenes_with_reports, successful_optimizations, failed_optimizations, snapshot_key
		) VALUES (
			:created_at, :total_lands, :occupied_lands, :empty_lands, :total_scenes,
			:scenes_with_optimized, :scenes_without_optimized, :optimization_percentage,
			:scenes_with_reports, :successful_optimizations, :failed_optimizations, :snapshot_key
		) RETURNING id`

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
		return fmt.Errorf("insert history entry: no id returned")
	}
	if err := rows.Scan(&entry.ID); err != nil {
		return fmt.Errorf("scan history id: %w", err)
	}

	r.logger.Debug("History entry inserted",
		zap.Int64("id", entry.ID),
		zap.Float64("optimization_percentage", entry.OptimizationPercentage),
	)
	return nil
}

func (r *historyRepository) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + `
		FROM optimization_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	entries := []domain.HistoryEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Prune удаляет всё, что не входит в keep самых новых записей.
// Удалённые записи возвращаются, чтобы вызывающий мог убрать их снимки.
func (r *historyRepository) Prune(ctx context.Context, keep int) ([]domain.HistoryEntry, error) {
	query := `
		DELETE FROM optimization_history
		WHERE id NOT IN (
			SELECT id FROM optimization_history
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		)
		RETURNING ` + historyColumns

	var removed []domain.HistoryEntry
	if err := r.db.SelectContext(ctx, &removed, query, keep); err != nil {
		return nil, fmt.Errorf("prune history: %w", err)
	}

	if len(removed) > 0 {
		r.logger.Info("History pruned", zap.Int("removed", len(removed)), zap.Int("kept", keep))
	}
	return removed, nil
}
