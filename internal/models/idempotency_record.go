package models

import (
	"encoding/json"
	"time"
)

// IdempotencyRecord represents one row in idempotency_records.
// Unique constraint: (key, scope).
type IdempotencyRecord struct {
	Key           string          `db:"key"`
	Scope         string          `db:"scope"`
	Status        string          `db:"status"`
	ResultPayload json.RawMessage `db:"result_payload"` // Nullable until completion
	ErrorContext  string          `db:"error_context"`
	CreatedAt     time.Time       `db:"created_at"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
