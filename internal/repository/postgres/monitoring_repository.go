package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
)

const processColumns = `consumer_id, scene_id, process_method, status, duration_ms, completed_at`

type monitoringRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMonitoringRepository создает репозиторий мониторинга потребителей
func NewMonitoringRepository(db *DB, logger *zap.Logger) repository.MonitoringRepository {
	return &monitoringRepository{
		db:     db,
		logger: logger,
	}
}

func (r *monitoringRepository) UpsertHeartbeat(ctx context.Context, hb domain.Heartbeat) error {
	query := `
		INSERT INTO pipeline_consumers (
			id, process_method, status, current_scene_id, current_step,
			progress_percent, started_at, last_heartbeat, is_priority
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
		ON CONFLICT (id) DO UPDATE SET
			process_method = EXCLUDED.process_method,
			status = EXCLUDED.status,
			current_scene_id = EXCLUDED.current_scene_id,
			current_step = EXCLUDED.current_step,
			progress_percent = EXCLUDED.progress_percent,
			started_at = EXCLUDED.started_at,
			last_heartbeat = NOW(),
			is_priority = EXCLUDED.is_priority`

	_, err := r.db.ExecContext(ctx, query,
		hb.ConsumerID,
		hb.ProcessMethod,
		hb.Status,
		nullString(hb.CurrentSceneID),
		nullString(hb.CurrentStep),
		hb.ProgressPercent,
		hb.StartedAt,
		hb.IsPriority,
	)
	if err != nil {
		return fmt.Errorf("upsert heartbeat: %w", err)
	}
	return nil
}

// RecordCompletion пишет строку истории и обновляет счётчики потребителя в одной транзакции.
// Если потребитель ещё не присылал heartbeat, обновляется только история.
func (r *monitoringRepository) RecordCompletion(ctx context.Context, job domain.JobCompletion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pipeline_process_history (
			consumer_id, scene_id, process_method, status,
			started_at, completed_at, duration_ms, error_message, is_priority
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ConsumerID,
		job.SceneID,
		job.ProcessMethod,
		job.Status,
		job.StartedAt,
		job.CompletedAt,
		job.DurationMs,
		nullString(job.ErrorMessage),
		job.IsPriority,
	)
	if err != nil {
		return fmt.Errorf("insert process history: %w", err)
	}

	var current struct {
		JobsCompleted int   `db:"jobs_completed"`
		JobsFailed    int   `db:"jobs_failed"`
		AvgMs         int64 `db:"avg_processing_time_ms"`
	}
	err = tx.GetContext(ctx, &current, `
		SELECT jobs_completed, jobs_failed, avg_processing_time_ms
		FROM pipeline_consumers
		WHERE id = $1
		FOR UPDATE`, job.ConsumerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		r.logger.Debug("Job completion for unknown consumer", zap.String("consumer_id", job.ConsumerID))
	case err != nil:
		return fmt.Errorf("load consumer: %w", err)
	default:
		completed, failed := current.JobsCompleted, current.JobsFailed
		if job.Succeeded() {
			completed++
		} else {
			failed++
		}
		avg := domain.RunningAverage(current.AvgMs, current.JobsCompleted+current.JobsFailed, job.DurationMs)

		_, err = tx.ExecContext(ctx, `
			UPDATE pipeline_consumers SET
				jobs_completed = $2,
				jobs_failed = $3,
				avg_processing_time_ms = $4,
				status = $5,
				current_scene_id = NULL,
				current_step = NULL,
				progress_percent = 0,
				started_at = NULL,
				is_priority = FALSE,
				last_job_status = $6,
				last_heartbeat = NOW()
			WHERE id = $1`,
			job.ConsumerID, completed, failed, avg, domain.ConsumerStatusIdle, job.Status,
		)
		if err != nil {
			return fmt.Errorf("update consumer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *monitoringRepository) RecordQueueDepth(ctx context.Context, depth int, retain int) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO pipeline_queue_metrics (queue_depth, timestamp) VALUES ($1, NOW())`, depth); err != nil {
		return fmt.Errorf("insert queue sample: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM pipeline_queue_metrics
		WHERE id NOT IN (
			SELECT id FROM pipeline_queue_metrics
			ORDER BY timestamp DESC, id DESC
			LIMIT $1
		)`, retain)
	if err != nil {
		// замер уже записан, чистка догонит в следующий раз
		r.logger.Warn("Failed to trim queue metrics", zap.Error(err))
		return nil
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.logger.Debug("Queue metrics trimmed", zap.Int64("removed", n))
	}
	return nil
}

func (r *monitoringRepository) LatestQueueSample(ctx context.Context) (*domain.QueueSample, error) {
	var sample domain.QueueSample
	err := r.db.GetContext(ctx, &sample, `
		SELECT queue_depth, timestamp
		FROM pipeline_queue_metrics
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest queue sample: %w", err)
	}
	return &sample, nil
}

// QueueHistory возвращает первый замер каждого двухчасового окна, по возрастанию времени
func (r *monitoringRepository) QueueHistory(ctx context.Context, since time.Time) ([]domain.QueueSample, error) {
	query := `
		SELECT queue_depth, timestamp FROM (
			SELECT queue_depth, timestamp,
				ROW_NUMBER() OVER (
					PARTITION BY DATE_TRUNC('day', timestamp), FLOOR(EXTRACT(HOUR FROM timestamp) / 2)
					ORDER BY timestamp
				) AS rn
			FROM pipeline_queue_metrics
			WHERE timestamp >= $1
		) windows
		WHERE rn = 1
		ORDER BY timestamp ASC`

	samples := []domain.QueueSample{}
	if err := r.db.SelectContext(ctx, &samples, query, since); err != nil {
		return nil, fmt.Errorf("queue history: %w", err)
	}
	return samples, nil
}

func (r *monitoringRepository) ListConsumers(ctx context.Context) ([]domain.Consumer, error) {
	query := `
		SELECT id, process_method, status, current_scene_id, current_step,
			progress_percent, started_at, last_heartbeat, jobs_completed, jobs_failed,
			avg_processing_time_ms, is_priority, last_job_status
		FROM pipeline_consumers
		ORDER BY last_heartbeat DESC`

	consumers := []domain.Consumer{}
	if err := r.db.SelectContext(ctx, &consumers, query); err != nil {
		return nil, fmt.Errorf("list consumers: %w", err)
	}
	return consumers, nil
}

func (r *monitoringRepository) DeleteStaleConsumers(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pipeline_consumers WHERE last_heartbeat < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete stale consumers: %w", err)
	}
	return res.RowsAffected()
}

func (r *monitoringRepository) RecentProcesses(ctx context.Context, limit int) ([]domain.ProcessRecord, error) {
	query := `SELECT ` + processColumns + `
		FROM pipeline_process_history
		ORDER BY completed_at DESC
		LIMIT $1`

	records := []domain.ProcessRecord{}
	if err := r.db.SelectContext(ctx, &records, query, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("recent processes: %w", err)
	}
	return records, nil
}

func (r *monitoringRepository) CountSucceededSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM pipeline_process_history
		WHERE status = $1 AND completed_at >= $2`, domain.JobStatusSuccess, since)
	if err != nil {
		return 0, fmt.Errorf("count succeeded: %w", err)
	}
	return count, nil
}

func (r *monitoringRepository) DeleteProcessesBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pipeline_process_history WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete old processes: %w", err)
	}
	return res.RowsAffected()
}

func (r *monitoringRepository) SlowestSucceeded(ctx context.Context, limit int) ([]domain.ProcessRecord, error) {
	query := `SELECT ` + processColumns + `
		FROM pipeline_process_history
		WHERE status = $1
		ORDER BY duration_ms DESC
		LIMIT $2`

	records := []domain.ProcessRecord{}
	if err := r.db.SelectContext(ctx, &records, query, domain.JobStatusSuccess, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("slowest succeeded: %w", err)
	}
	return records, nil
}
