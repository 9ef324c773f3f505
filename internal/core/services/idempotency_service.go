package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/middleware"
)

// idempotencyService coordinates exactly-once execution through the unique
// constraint on idempotency_records(key, scope). The insert is the
// mutual-exclusion gate; only COMPLETED results replay, FAILED attempts are
// re-executed, and stale IN_PROGRESS records (crashed owner) are taken over
// after a configured threshold.
type idempotencyService struct {
	repo       portsrepo.IdempotencyRepository
	staleAfter time.Duration
}

// NewIdempotencyService creates a new idempotency coordinator.
func NewIdempotencyService(repo portsrepo.IdempotencyRepository, staleAfter time.Duration) portssvc.IdempotencySvcFacade {
	return &idempotencyService{repo: repo, staleAfter: staleAfter}
}

var _ portssvc.IdempotencySvcFacade = (*idempotencyService)(nil)

// Execute runs fn at most once per (key, scope).
func (s *idempotencyService) Execute(ctx context.Context, key string, scope string, fn portssvc.IdempotentFn) (json.RawMessage, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if key == "" {
		return nil, false, fmt.Errorf("%w: idempotency key must not be empty", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	record := domain.IdempotencyRecord{
		Key:           key,
		Scope:         scope,
		Status:        domain.IdempotencyInProgress,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	err := s.repo.InsertRecord(ctx, record)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return nil, false, err
		}
		owned, payload, err := s.resolveExisting(ctx, key, scope)
		if err != nil || payload != nil {
			return payload, payload != nil, err
		}
		if !owned {
			return nil, false, fmt.Errorf("%w: key %s", apperrors.ErrIdempotencyInProgress, key)
		}
		logger.Info("Re-attempting operation under existing idempotency key",
			slog.String("scope", scope), slog.String("key", key))
	}

	payload, fnErr := fn(ctx)
	markedAt := time.Now().UTC()
	if fnErr != nil {
		if markErr := s.repo.MarkFailed(ctx, key, scope, fnErr.Error(), markedAt); markErr != nil {
			logger.Error("Failed to mark idempotency record FAILED",
				slog.String("scope", scope), slog.String("key", key), slog.String("error", markErr.Error()))
		}
		return nil, false, fnErr
	}

	if err := s.repo.MarkCompleted(ctx, key, scope, payload, markedAt); err != nil {
		// The side effects already happened; surfacing the persistence error
		// here would make the caller retry a completed operation without the
		// replay shield. Log loudly and return the outcome.
		logger.Error("Failed to mark idempotency record COMPLETED",
			slog.String("scope", scope), slog.String("key", key), slog.String("error", err.Error()))
	}
	return payload, false, nil
}

// resolveExisting decides what a duplicate submission gets: the stored payload
// (COMPLETED), ownership of the record for re-execution (FAILED, or stale
// IN_PROGRESS), or neither when a live attempt holds the key.
func (s *idempotencyService) resolveExisting(ctx context.Context, key string, scope string) (owned bool, payload json.RawMessage, err error) {
	existing, err := s.repo.FindRecord(ctx, key, scope)
	if err != nil {
		return false, nil, fmt.Errorf("failed to resolve existing idempotency record: %w", err)
	}

	now := time.Now().UTC()
	switch existing.Status {
	case domain.IdempotencyCompleted:
		return false, existing.ResultPayload, nil
	case domain.IdempotencyFailed:
		owned, err := s.repo.ResetFailed(ctx, key, scope, now)
		if err != nil {
			return false, nil, err
		}
		if !owned {
			// Another retry got there first; treat as in progress.
			return false, nil, nil
		}
		return true, nil, nil
	case domain.IdempotencyInProgress:
		owned, err := s.repo.TakeOverStale(ctx, key, scope, now.Add(-s.staleAfter), now)
		if err != nil {
			return false, nil, err
		}
		return owned, nil, nil
	default:
		return false, nil, fmt.Errorf("unknown idempotency status %q for key %s", existing.Status, key)
	}
}
