package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompensationTask represents a pending reversal row.
type CompensationTask struct {
	TaskID        string          `db:"task_id"`
	UserID        string          `db:"user_id"`
	AccountID     string          `db:"account_id"`
	Action        string          `db:"action"`
	Amount        decimal.Decimal `db:"amount"`
	Status        string          `db:"status"`
	RetryCount    int             `db:"retry_count"`
	NextAttemptAt time.Time       `db:"next_attempt_at"`
	ErrorContext  string          `db:"error_context"`
	ReferenceType string          `db:"reference_type"`
	ReferenceID   string          `db:"reference_id"`
	CreatedAt     time.Time       `db:"created_at"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
