package alerting

import (
	"context"
	"log/slog"

	"github.com/courierly/wallet-backend/internal/core/domain"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/middleware"
)

// LogNotifier emits operator alerts as high-severity structured log events.
// Log-based alerting keeps the pipeline simple; the on-call route matches on
// the "alert" attribute downstream.
type LogNotifier struct{}

// NewLogNotifier creates a log-based alert notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

var _ portssvc.AlertNotifier = (*LogNotifier)(nil)

// NotifyCompensationFailure reports a task that exhausted its retry budget and
// now needs manual reconciliation.
func (n *LogNotifier) NotifyCompensationFailure(ctx context.Context, task domain.CompensationTask) {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Error("ALERT: compensation task requires manual intervention",
		slog.String("alert", "compensation_failed_permanent"),
		slog.String("task_id", task.TaskID),
		slog.String("user_id", task.UserID),
		slog.String("account_id", task.AccountID),
		slog.String("amount", task.Amount.String()),
		slog.String("reference_type", task.ReferenceType),
		slog.String("reference_id", task.ReferenceID),
		slog.Int("retry_count", task.RetryCount),
		slog.String("error_context", task.ErrorContext),
	)
}
