package domain

import (
	"encoding/json"
	"time"
)

// IdempotencyStatus is the lifecycle state of an idempotency record.
type IdempotencyStatus string

const (
	IdempotencyInProgress IdempotencyStatus = "IN_PROGRESS"
	IdempotencyCompleted  IdempotencyStatus = "COMPLETED"
	IdempotencyFailed     IdempotencyStatus = "FAILED"
)

// IdempotencyRecord gates an operation behind a caller-supplied key.
// The unique constraint on (key, scope) is load-bearing: the insert acts as a
// mutual-exclusion gate, and only COMPLETED records ever replay their stored
// result payload. FAILED records allow a later attempt to re-execute.
type IdempotencyRecord struct {
	Key           string            `json:"key"`
	Scope         string            `json:"scope"` // Operation name, e.g. "shipment.create"
	Status        IdempotencyStatus `json:"status"`
	ResultPayload json.RawMessage   `json:"resultPayload"` // Written once on completion
	ErrorContext  string            `json:"errorContext"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}
