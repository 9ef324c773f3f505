package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	"github.com/courierly/wallet-backend/internal/models"
	"github.com/courierly/wallet-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxIdempotencyRepository struct {
	BaseRepository
}

// NewIdempotencyRepository creates a new repository for idempotency records.
func NewIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyRepository {
	return &PgxIdempotencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.IdempotencyRepository = (*PgxIdempotencyRepository)(nil)

// InsertRecord inserts a new IN_PROGRESS record. The unique index on
// (key, scope) is the mutual-exclusion gate; a collision maps to ErrDuplicate.
func (r *PgxIdempotencyRepository) InsertRecord(ctx context.Context, record domain.IdempotencyRecord) error {
	m := mapping.ToModelIdempotencyRecord(record)

	query := `
		INSERT INTO idempotency_records (key, scope, status, result_payload, error_context, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.Key, m.Scope, m.Status, m.ResultPayload, m.ErrorContext, m.CreatedAt, m.LastUpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: idempotency key %s in scope %s", apperrors.ErrDuplicate, m.Key, m.Scope)
		}
		return fmt.Errorf("failed to insert idempotency record %s/%s: %w", m.Scope, m.Key, err)
	}
	return nil
}

// FindRecord retrieves a record by key and scope.
func (r *PgxIdempotencyRepository) FindRecord(ctx context.Context, key string, scope string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT key, scope, status, result_payload, error_context, created_at, last_updated_at
		FROM idempotency_records
		WHERE key = $1 AND scope = $2;
	`
	var m models.IdempotencyRecord
	err := r.Pool.QueryRow(ctx, query, key, scope).Scan(
		&m.Key, &m.Scope, &m.Status, &m.ResultPayload, &m.ErrorContext, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find idempotency record %s/%s: %w", scope, key, err)
	}
	d := mapping.ToDomainIdempotencyRecord(m)
	return &d, nil
}

// MarkCompleted stores the serialized result and transitions to COMPLETED.
// The payload is written exactly once; replays read it back verbatim.
func (r *PgxIdempotencyRepository) MarkCompleted(ctx context.Context, key string, scope string, payload json.RawMessage, now time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx,
		`UPDATE idempotency_records SET status = 'COMPLETED', result_payload = $3, last_updated_at = $4 WHERE key = $1 AND scope = $2 AND status = 'IN_PROGRESS'`,
		key, scope, payload, now)
	if err != nil {
		return fmt.Errorf("failed to complete idempotency record %s/%s: %w", scope, key, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: idempotency record %s/%s not IN_PROGRESS", apperrors.ErrNotFound, scope, key)
	}
	return nil
}

// MarkFailed transitions to FAILED so a later retry may re-execute.
func (r *PgxIdempotencyRepository) MarkFailed(ctx context.Context, key string, scope string, errorContext string, now time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx,
		`UPDATE idempotency_records SET status = 'FAILED', error_context = $3, last_updated_at = $4 WHERE key = $1 AND scope = $2 AND status = 'IN_PROGRESS'`,
		key, scope, errorContext, now)
	if err != nil {
		return fmt.Errorf("failed to fail idempotency record %s/%s: %w", scope, key, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: idempotency record %s/%s not IN_PROGRESS", apperrors.ErrNotFound, scope, key)
	}
	return nil
}

// TakeOverStale re-claims an IN_PROGRESS record whose owner appears to have
// crashed. The conditional update is the compare-and-swap: only one caller
// can win it.
func (r *PgxIdempotencyRepository) TakeOverStale(ctx context.Context, key string, scope string, staleBefore time.Time, now time.Time) (bool, error) {
	cmdTag, err := r.Pool.Exec(ctx,
		`UPDATE idempotency_records SET last_updated_at = $4 WHERE key = $1 AND scope = $2 AND status = 'IN_PROGRESS' AND last_updated_at < $3`,
		key, scope, staleBefore, now)
	if err != nil {
		return false, fmt.Errorf("failed to take over stale idempotency record %s/%s: %w", scope, key, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// ResetFailed conditionally moves a FAILED record back to IN_PROGRESS.
func (r *PgxIdempotencyRepository) ResetFailed(ctx context.Context, key string, scope string, now time.Time) (bool, error) {
	cmdTag, err := r.Pool.Exec(ctx,
		`UPDATE idempotency_records SET status = 'IN_PROGRESS', error_context = '', last_updated_at = $3 WHERE key = $1 AND scope = $2 AND status = 'FAILED'`,
		key, scope, now)
	if err != nil {
		return false, fmt.Errorf("failed to reset failed idempotency record %s/%s: %w", scope, key, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
