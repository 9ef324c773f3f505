package repositories

import (
	"context"
	"time"

	"github.com/courierly/wallet-backend/internal/core/domain"
)

// CompensationRepository defines persistence operations for compensation tasks.
// Status transitions are conditional updates so that multiple worker instances
// can run concurrently without double-processing a task.
type CompensationRepository interface {
	// EnqueueTask persists a new PENDING task.
	EnqueueTask(ctx context.Context, task domain.CompensationTask) error

	// FindTaskByID retrieves a task by its ID.
	FindTaskByID(ctx context.Context, taskID string) (*domain.CompensationTask, error)

	// ClaimDueTasks atomically moves up to limit due PENDING tasks to
	// PROCESSING and returns them. The claim is a compare-and-swap on status;
	// a task claimed by one worker is invisible to the others. PROCESSING
	// tasks untouched since staleBefore are reclaimed from their crashed
	// owner.
	ClaimDueTasks(ctx context.Context, limit int, now time.Time, staleBefore time.Time) ([]domain.CompensationTask, error)

	// MarkTaskDone transitions a PROCESSING task to DONE.
	MarkTaskDone(ctx context.Context, taskID string, now time.Time) error

	// MarkTaskRetry returns a PROCESSING task to PENDING with an incremented
	// retry count and a backoff-delayed next attempt time.
	MarkTaskRetry(ctx context.Context, taskID string, retryCount int, nextAttemptAt time.Time, errorContext string, now time.Time) error

	// MarkTaskFailedPermanent transitions a PROCESSING task to FAILED_PERMANENT.
	MarkTaskFailedPermanent(ctx context.Context, taskID string, errorContext string, now time.Time) error
}
