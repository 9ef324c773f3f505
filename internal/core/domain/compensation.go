package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompensationAction identifies the corrective action a task performs.
type CompensationAction string

const (
	CompensationRefund CompensationAction = "REFUND"
)

// CompensationStatus is the lifecycle state of a compensation task.
type CompensationStatus string

const (
	CompensationPending         CompensationStatus = "PENDING"
	CompensationProcessing      CompensationStatus = "PROCESSING"
	CompensationDone            CompensationStatus = "DONE"
	CompensationFailedPermanent CompensationStatus = "FAILED_PERMANENT"
)

// CompensationTask is the durable record of a reversal (typically a refund)
// that could not be applied synchronously. The background worker retries it
// with exponential backoff until it succeeds or exhausts its retry budget.
type CompensationTask struct {
	TaskID        string             `json:"taskID"` // Primary key (UUID)
	UserID        string             `json:"userID"`
	AccountID     string             `json:"accountID"`
	Action        CompensationAction `json:"action"`
	Amount        decimal.Decimal    `json:"amount"`
	Status        CompensationStatus `json:"status"`
	RetryCount    int                `json:"retryCount"`
	NextAttemptAt time.Time          `json:"nextAttemptAt"`
	ErrorContext  string             `json:"errorContext"`
	ReferenceType string             `json:"referenceType"` // What the reversal compensates, e.g. "shipment"
	ReferenceID   string             `json:"referenceID"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}
