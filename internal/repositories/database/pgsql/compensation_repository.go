package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	"github.com/courierly/wallet-backend/internal/models"
	"github.com/courierly/wallet-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCompensationRepository struct {
	BaseRepository
}

// NewCompensationRepository creates a new repository for compensation tasks.
func NewCompensationRepository(pool *pgxpool.Pool) portsrepo.CompensationRepository {
	return &PgxCompensationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CompensationRepository = (*PgxCompensationRepository)(nil)

// EnqueueTask inserts a new PENDING task.
func (r *PgxCompensationRepository) EnqueueTask(ctx context.Context, task domain.CompensationTask) error {
	m := mapping.ToModelCompensationTask(task)

	query := `
		INSERT INTO compensation_tasks (task_id, user_id, account_id, action, amount, status, retry_count, next_attempt_at, error_context, reference_type, reference_id, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TaskID, m.UserID, m.AccountID, m.Action, m.Amount, m.Status, m.RetryCount,
		m.NextAttemptAt, m.ErrorContext, m.ReferenceType, m.ReferenceID, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue compensation task %s: %w", m.TaskID, err)
	}
	return nil
}

// FindTaskByID retrieves a task by its ID.
func (r *PgxCompensationRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.CompensationTask, error) {
	query := `
		SELECT task_id, user_id, account_id, action, amount, status, retry_count, next_attempt_at, error_context, reference_type, reference_id, created_at, last_updated_at
		FROM compensation_tasks
		WHERE task_id = $1;
	`
	m, err := scanCompensationTask(r.Pool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find compensation task %s: %w", taskID, err)
	}
	d := mapping.ToDomainCompensationTask(*m)
	return &d, nil
}

func scanCompensationTask(row rowScanner) (*models.CompensationTask, error) {
	var m models.CompensationTask
	err := row.Scan(
		&m.TaskID, &m.UserID, &m.AccountID, &m.Action, &m.Amount, &m.Status, &m.RetryCount,
		&m.NextAttemptAt, &m.ErrorContext, &m.ReferenceType, &m.ReferenceID, &m.CreatedAt, &m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ClaimDueTasks atomically moves up to limit due tasks to PROCESSING and
// returns them. SKIP LOCKED keeps concurrent worker instances from claiming
// the same rows. PROCESSING rows untouched since staleBefore are reclaimed
// too: their owner crashed or lost the DONE transition, and without a reclaim
// the refund obligation would be stranded.
func (r *PgxCompensationRepository) ClaimDueTasks(ctx context.Context, limit int, now time.Time, staleBefore time.Time) ([]domain.CompensationTask, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		UPDATE compensation_tasks
		SET status = 'PROCESSING', last_updated_at = $2
		WHERE task_id IN (
			SELECT task_id FROM compensation_tasks
			WHERE (status = 'PENDING' AND next_attempt_at <= $2)
			   OR (status = 'PROCESSING' AND last_updated_at <= $3)
			ORDER BY next_attempt_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING task_id, user_id, account_id, action, amount, status, retry_count, next_attempt_at, error_context, reference_type, reference_id, created_at, last_updated_at;
	`
	rows, err := r.Pool.Query(ctx, query, limit, now, staleBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due compensation tasks: %w", err)
	}
	defer rows.Close()

	claimed := []models.CompensationTask{}
	for rows.Next() {
		m, err := scanCompensationTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claimed compensation task: %w", err)
		}
		claimed = append(claimed, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating claimed compensation tasks: %w", rows.Err())
	}

	return mapping.ToDomainCompensationTaskSlice(claimed), nil
}

// MarkTaskDone transitions a PROCESSING task to DONE.
func (r *PgxCompensationRepository) MarkTaskDone(ctx context.Context, taskID string, now time.Time) error {
	return r.transitionTask(ctx, taskID,
		`UPDATE compensation_tasks SET status = 'DONE', last_updated_at = $2 WHERE task_id = $1 AND status = 'PROCESSING'`,
		taskID, now)
}

// MarkTaskRetry returns a PROCESSING task to PENDING with backoff.
func (r *PgxCompensationRepository) MarkTaskRetry(ctx context.Context, taskID string, retryCount int, nextAttemptAt time.Time, errorContext string, now time.Time) error {
	return r.transitionTask(ctx, taskID,
		`UPDATE compensation_tasks SET status = 'PENDING', retry_count = $2, next_attempt_at = $3, error_context = $4, last_updated_at = $5 WHERE task_id = $1 AND status = 'PROCESSING'`,
		taskID, retryCount, nextAttemptAt, errorContext, now)
}

// MarkTaskFailedPermanent transitions a PROCESSING task to FAILED_PERMANENT.
func (r *PgxCompensationRepository) MarkTaskFailedPermanent(ctx context.Context, taskID string, errorContext string, now time.Time) error {
	return r.transitionTask(ctx, taskID,
		`UPDATE compensation_tasks SET status = 'FAILED_PERMANENT', error_context = $2, last_updated_at = $3 WHERE task_id = $1 AND status = 'PROCESSING'`,
		taskID, errorContext, now)
}

func (r *PgxCompensationRepository) transitionTask(ctx context.Context, taskID string, query string, args ...any) error {
	cmdTag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to transition compensation task %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the task does not exist or another worker moved it first.
		return fmt.Errorf("%w: compensation task %s not in expected state", apperrors.ErrNotFound, taskID)
	}
	return nil
}
