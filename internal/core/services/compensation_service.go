package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/courierly/wallet-backend/internal/core/domain"
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/middleware"
	"github.com/courierly/wallet-backend/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

const ScopeCompensation = "compensation.refund"

// compensationService owns the durable reversal queue. Refund tasks are
// enqueued by saga failure paths and drained by the background worker; each
// application runs under a task-derived idempotency key so a crash between
// the credit and the DONE transition cannot double-credit on the next poll.
type compensationService struct {
	compensationRepo portsrepo.CompensationRepository
	walletSvc        portssvc.WalletSvcFacade
	idempotencySvc   portssvc.IdempotencySvcFacade
	alertNotifier    portssvc.AlertNotifier
	baseDelay        time.Duration
	maxDelay         time.Duration
	maxRetry         int
	batchSize        int
	staleAfter       time.Duration
}

// NewCompensationService creates a new CompensationService.
func NewCompensationService(
	compensationRepo portsrepo.CompensationRepository,
	walletSvc portssvc.WalletSvcFacade,
	idempotencySvc portssvc.IdempotencySvcFacade,
	alertNotifier portssvc.AlertNotifier,
	baseDelay time.Duration,
	maxDelay time.Duration,
	maxRetry int,
	batchSize int,
	staleAfter time.Duration,
) portssvc.CompensationSvcFacade {
	return &compensationService{
		compensationRepo: compensationRepo,
		walletSvc:        walletSvc,
		idempotencySvc:   idempotencySvc,
		alertNotifier:    alertNotifier,
		baseDelay:        baseDelay,
		maxDelay:         maxDelay,
		maxRetry:         maxRetry,
		batchSize:        batchSize,
		staleAfter:       staleAfter,
	}
}

var _ portssvc.CompensationSvcFacade = (*compensationService)(nil)

// EnqueueRefund persists a refund obligation as a PENDING task, due
// immediately.
func (s *compensationService) EnqueueRefund(ctx context.Context, userID string, accountID string, amount decimal.Decimal, ref portssvc.LedgerReference, errorContext string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	task := domain.CompensationTask{
		TaskID:        uuid.NewString(),
		UserID:        userID,
		AccountID:     accountID,
		Action:        domain.CompensationRefund,
		Amount:        amount,
		Status:        domain.CompensationPending,
		RetryCount:    0,
		NextAttemptAt: now,
		ErrorContext:  errorContext,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if err := s.compensationRepo.EnqueueTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to enqueue compensation task: %w", err)
	}

	logger.Warn("Compensation task enqueued",
		slog.String("task_id", task.TaskID),
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()),
	)
	return task.TaskID, nil
}

// ProcessDueTasks claims a batch of due tasks and attempts each one.
// Individual task failures are absorbed into the retry schedule; only claim
// errors propagate to the caller. The claim also reclaims PROCESSING tasks
// whose owner went quiet for staleAfter, so a worker crash between the claim
// and the DONE transition cannot strand a refund.
func (s *compensationService) ProcessDueTasks(ctx context.Context) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	tasks, err := s.compensationRepo.ClaimDueTasks(ctx, s.batchSize, now, now.Add(-s.staleAfter))
	if err != nil {
		return 0, fmt.Errorf("failed to claim compensation tasks: %w", err)
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	logger.Info("Processing compensation tasks", slog.Int("count", len(tasks)))
	for _, task := range tasks {
		s.processTask(ctx, task)
	}
	return len(tasks), nil
}

// processTask applies one claimed task and records its outcome.
func (s *compensationService) processTask(ctx context.Context, task domain.CompensationTask) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	applyErr := s.applyRefund(ctx, task)
	if applyErr == nil {
		if err := s.compensationRepo.MarkTaskDone(ctx, task.TaskID, time.Now().UTC()); err != nil {
			// The stale reclaim will pick this task up again; the refund is
			// idempotency-shielded, so that run replays rather than re-credits.
			logger.Error("Failed to mark compensation task DONE",
				slog.String("task_id", task.TaskID), slog.String("error", err.Error()))
		} else {
			logger.Info("Compensation task completed", slog.String("task_id", task.TaskID))
		}
		return
	}

	retryCount := task.RetryCount + 1
	if retryCount >= s.maxRetry {
		if err := s.compensationRepo.MarkTaskFailedPermanent(ctx, task.TaskID, applyErr.Error(), now); err != nil {
			logger.Error("Failed to mark compensation task FAILED_PERMANENT",
				slog.String("task_id", task.TaskID), slog.String("error", err.Error()))
			return
		}
		task.Status = domain.CompensationFailedPermanent
		task.RetryCount = retryCount
		task.ErrorContext = applyErr.Error()
		logger.Error("Compensation task failed permanently",
			slog.String("task_id", task.TaskID),
			slog.String("account_id", task.AccountID),
			slog.String("amount", task.Amount.String()),
			slog.Int("retry_count", retryCount),
			slog.String("error", applyErr.Error()),
		)
		metrics.CompensationPermanentFailuresTotal.Inc()
		s.alertNotifier.NotifyCompensationFailure(ctx, task)
		return
	}

	nextAttemptAt := now.Add(s.backoff(retryCount))
	if err := s.compensationRepo.MarkTaskRetry(ctx, task.TaskID, retryCount, nextAttemptAt, applyErr.Error(), now); err != nil {
		logger.Error("Failed to schedule compensation retry",
			slog.String("task_id", task.TaskID), slog.String("error", err.Error()))
		return
	}
	logger.Warn("Compensation task retry scheduled",
		slog.String("task_id", task.TaskID),
		slog.Int("retry_count", retryCount),
		slog.Time("next_attempt_at", nextAttemptAt),
		slog.String("error", applyErr.Error()),
	)
	metrics.CompensationRetriesTotal.Inc()
}

// applyRefund credits the task amount under the task's own idempotency key.
func (s *compensationService) applyRefund(ctx context.Context, task domain.CompensationTask) error {
	key := "compensation:" + task.TaskID
	ref := portssvc.LedgerReference{Type: "compensation_task", ID: task.TaskID}

	_, _, err := s.idempotencySvc.Execute(ctx, key, ScopeCompensation, func(ctx context.Context) (json.RawMessage, error) {
		entry, newBalance, err := s.walletSvc.Credit(ctx, task.AccountID, task.Amount, domain.EntryCompensationRefund, ref, "compensating refund", task.UserID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]string{
			"entryID":    entry.EntryID,
			"newBalance": newBalance.String(),
		})
	})
	return err
}

// backoff returns the delay before attempt retryCount: base doubled per retry,
// capped at maxDelay.
func (s *compensationService) backoff(retryCount int) time.Duration {
	delay := s.baseDelay
	for i := 1; i < retryCount; i++ {
		delay *= 2
		if delay >= s.maxDelay {
			return s.maxDelay
		}
	}
	if delay > s.maxDelay {
		return s.maxDelay
	}
	return delay
}

// GetTaskByID retrieves a compensation task.
func (s *compensationService) GetTaskByID(ctx context.Context, taskID string) (*domain.CompensationTask, error) {
	return s.compensationRepo.FindTaskByID(ctx, taskID)
}
