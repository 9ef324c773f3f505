package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/courierly/wallet-backend/internal/core/domain"
)

// IdempotencyRepository defines persistence operations for idempotency records.
// The unique constraint on (key, scope) is the mutual-exclusion gate: the first
// insert wins, every later insert collides with apperrors.ErrDuplicate.
type IdempotencyRepository interface {
	// InsertRecord persists a new IN_PROGRESS record. Returns
	// apperrors.ErrDuplicate when a record with the same key and scope exists.
	InsertRecord(ctx context.Context, record domain.IdempotencyRecord) error

	// FindRecord retrieves a record by key and scope.
	FindRecord(ctx context.Context, key string, scope string) (*domain.IdempotencyRecord, error)

	// MarkCompleted stores the serialized result and transitions to COMPLETED.
	MarkCompleted(ctx context.Context, key string, scope string, payload json.RawMessage, now time.Time) error

	// MarkFailed transitions to FAILED, allowing a later retry to re-execute.
	MarkFailed(ctx context.Context, key string, scope string, errorContext string, now time.Time) error

	// TakeOverStale conditionally re-claims an IN_PROGRESS record that has not
	// been touched since staleBefore (crashed owner). Returns true when the
	// caller now owns the record.
	TakeOverStale(ctx context.Context, key string, scope string, staleBefore time.Time, now time.Time) (bool, error)

	// ResetFailed conditionally moves a FAILED record back to IN_PROGRESS for
	// re-execution. Returns true when the caller now owns the record.
	ResetFailed(ctx context.Context, key string, scope string, now time.Time) (bool, error)
}
