package services

import (
	"context"

	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CompensationSvcFacade manages durable reversal tasks and their background
// processing.
type CompensationSvcFacade interface {
	// EnqueueRefund records a refund obligation that could not be applied
	// synchronously. Called only from saga failure paths.
	EnqueueRefund(ctx context.Context, userID string, accountID string, amount decimal.Decimal, ref LedgerReference, errorContext string) (string, error)

	// ProcessDueTasks claims due PENDING tasks and attempts their reversals.
	// Each task runs under its own task-derived idempotency key so a crash
	// mid-retry cannot double-credit. Returns the number of tasks processed.
	ProcessDueTasks(ctx context.Context) (int, error)

	// GetTaskByID retrieves a compensation task.
	GetTaskByID(ctx context.Context, taskID string) (*domain.CompensationTask, error)
}
