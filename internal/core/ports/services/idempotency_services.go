package services

import (
	"context"
	"encoding/json"
)

// IdempotentFn is the operation body guarded by an idempotency key. It returns
// the serialized outcome that will be stored and replayed verbatim on
// duplicate submissions.
type IdempotentFn func(ctx context.Context) (json.RawMessage, error)

// IdempotencySvcFacade coordinates exactly-once execution of side-effecting
// operations keyed by a caller-supplied idempotency key.
type IdempotencySvcFacade interface {
	// Execute runs fn at most once per (key, scope). A duplicate submission of
	// a COMPLETED operation returns the stored payload with replayed=true and
	// does not re-execute fn; a FAILED operation is re-attempted; a live
	// IN_PROGRESS one fails with apperrors.ErrIdempotencyInProgress.
	Execute(ctx context.Context, key string, scope string, fn IdempotentFn) (payload json.RawMessage, replayed bool, err error)
}
