package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/dto"
	"github.com/courierly/wallet-backend/internal/middleware"
	"github.com/courierly/wallet-backend/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// Scope names for idempotency records written by the saga.
const (
	ScopeShipmentCreate = "shipment.create"
)

// shipmentService orchestrates shipment creation as a short-lived saga:
// debit the estimated cost, call the courier, then reconcile the actual cost
// or refund. Every failure branch ends in exactly one of: no net charge
// (refunded), a shipment matching the net charge, or a durable compensation
// task covering the dangling debit.
type shipmentService struct {
	walletSvc       portssvc.WalletSvcFacade
	idempotencySvc  portssvc.IdempotencySvcFacade
	compensationSvc portssvc.CompensationSvcFacade
	shipmentRepo    portsrepo.ShipmentRepository
	pricingSvc      portssvc.PricingSvc
	courier         portssvc.CourierAdapter
	courierTimeout  time.Duration
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(
	walletSvc portssvc.WalletSvcFacade,
	idempotencySvc portssvc.IdempotencySvcFacade,
	compensationSvc portssvc.CompensationSvcFacade,
	shipmentRepo portsrepo.ShipmentRepository,
	pricingSvc portssvc.PricingSvc,
	courier portssvc.CourierAdapter,
	courierTimeout time.Duration,
) portssvc.ShipmentSvcFacade {
	return &shipmentService{
		walletSvc:       walletSvc,
		idempotencySvc:  idempotencySvc,
		compensationSvc: compensationSvc,
		shipmentRepo:    shipmentRepo,
		pricingSvc:      pricingSvc,
		courier:         courier,
		courierTimeout:  courierTimeout,
	}
}

var _ portssvc.ShipmentSvcFacade = (*shipmentService)(nil)

// CreateShipment runs the saga end-to-end under the caller's idempotency key.
// A retried request (double submit, gateway retry) replays the first
// attempt's outcome without re-debiting or re-calling the courier.
func (s *shipmentService) CreateShipment(ctx context.Context, userID string, req dto.CreateShipmentRequest, idempotencyKey string) (*dto.CreateShipmentResponse, error) {
	account, err := s.walletSvc.GetAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrOwnershipViolation, req.AccountID)
	}

	payload, replayed, err := s.idempotencySvc.Execute(ctx, idempotencyKey, ScopeShipmentCreate, func(ctx context.Context) (json.RawMessage, error) {
		outcome, err := s.runSaga(ctx, userID, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(outcome)
	})
	if err != nil {
		return nil, err
	}

	var resp dto.CreateShipmentResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode shipment saga outcome: %w", err)
	}
	resp.IdempotentReplay = replayed
	return &resp, nil
}

// runSaga executes one fresh saga attempt. It is only reached when the
// idempotency coordinator granted ownership of the key.
func (s *shipmentService) runSaga(ctx context.Context, userID string, req dto.CreateShipmentRequest) (*dto.CreateShipmentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	shipmentID := uuid.NewString()
	ref := portssvc.LedgerReference{Type: "shipment", ID: shipmentID}

	// 1. Estimate. Pure, no side effects, happens before any debit.
	estimatedCost, err := s.pricingSvc.Estimate(ctx, req.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate shipment cost: %w", err)
	}
	if estimatedCost.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: estimated cost %s is not positive", apperrors.ErrValidation, estimatedCost.String())
	}

	// 2. Debit the estimate. Insufficient funds terminates the saga before
	// any courier call: no label without funds.
	_, _, err = s.walletSvc.Debit(ctx, req.AccountID, estimatedCost, domain.EntryShipmentCharge, ref, "shipment charge (estimated)", userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			metrics.SagaOutcomesTotal.WithLabelValues("insufficient_funds").Inc()
		}
		return nil, err
	}

	// 3. Call the courier outside any ledger lock, with a bounded timeout.
	// A timeout is a courier failure like any other.
	courierCtx, cancel := context.WithTimeout(ctx, s.courierTimeout)
	result, courierErr := s.courier.CreateShipment(courierCtx, userID, req.Details)
	cancel()

	if courierErr != nil {
		return nil, s.compensateFailedCourier(ctx, userID, req.AccountID, estimatedCost, ref, courierErr)
	}

	// 4. Reconcile the actual cost against the estimate. On failure only the
	// estimate is committed; the adjustment write never landed.
	charge, err := s.reconcile(ctx, userID, req.AccountID, estimatedCost, result.ActualCost, ref)
	if err != nil {
		return nil, s.unwindAfterBooking(ctx, userID, req.AccountID, estimatedCost, ref, result.TrackingNumber,
			fmt.Errorf("cost reconciliation failed: %w", err))
	}

	// 5. Persist the shipment row only now, after the courier accepted.
	now := time.Now().UTC()
	shipment := domain.Shipment{
		ShipmentID:     shipmentID,
		UserID:         userID,
		AccountID:      req.AccountID,
		Status:         domain.ShipmentCreated,
		EstimatedCost:  estimatedCost,
		ActualCost:     result.ActualCost,
		TrackingNumber: result.TrackingNumber,
		LabelPayload:   result.LabelPayload,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.shipmentRepo.SaveShipment(ctx, shipment); err != nil {
		return nil, s.unwindAfterBooking(ctx, userID, req.AccountID, charge, ref, result.TrackingNumber,
			fmt.Errorf("failed to persist shipment: %w", err))
	}

	logger.Info("Shipment created",
		slog.String("shipment_id", shipmentID),
		slog.String("tracking_number", result.TrackingNumber),
		slog.String("charge", charge.String()),
	)
	metrics.SagaOutcomesTotal.WithLabelValues("created").Inc()

	return &dto.CreateShipmentResponse{
		Status:   string(domain.ShipmentCreated),
		Shipment: dto.ToShipmentResponse(&shipment),
		Charge:   charge,
	}, nil
}

// compensateFailedCourier unwinds the speculative debit after a courier
// failure. If the synchronous refund also fails, the obligation is recorded
// durably as a compensation task; either way the courier error is what the
// caller sees.
func (s *shipmentService) compensateFailedCourier(ctx context.Context, userID, accountID string, amount decimal.Decimal, ref portssvc.LedgerReference, courierErr error) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Warn("Courier call failed, refunding estimate",
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()),
		slog.String("error", courierErr.Error()),
	)

	if unwindErr := s.refundOrCompensate(ctx, userID, accountID, amount, ref, "refund after courier failure",
		fmt.Sprintf("courier: %v", courierErr)); unwindErr != nil {
		return fmt.Errorf("%w: courier failed (%v) and %v", apperrors.ErrUpstream, courierErr, unwindErr)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrUpstream, courierErr)
}

// unwindAfterBooking reverses the committed charge when the saga fails after
// the courier already accepted the booking. The booking itself is cancelled
// best effort; a failed credit falls back to the compensation queue so the
// charge reversal survives either way.
func (s *shipmentService) unwindAfterBooking(ctx context.Context, userID, accountID string, amount decimal.Decimal, ref portssvc.LedgerReference, trackingNumber string, cause error) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Warn("Unwinding shipment charge",
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()),
		slog.String("error", cause.Error()),
	)

	cancelCtx, cancel := context.WithTimeout(ctx, s.courierTimeout)
	if cancelErr := s.courier.CancelShipment(cancelCtx, trackingNumber); cancelErr != nil {
		logger.Warn("Failed to cancel courier booking during unwind",
			slog.String("tracking_number", trackingNumber),
			slog.String("error", cancelErr.Error()),
		)
	}
	cancel()

	if unwindErr := s.refundOrCompensate(ctx, userID, accountID, amount, ref, "refund after shipment failure", cause.Error()); unwindErr != nil {
		return fmt.Errorf("%w; additionally %v", cause, unwindErr)
	}
	return cause
}

// refundOrCompensate credits amount back to the account, falling back to a
// durable compensation task when the synchronous credit fails. A non-nil
// return means both paths failed and the debit is dangling.
func (s *shipmentService) refundOrCompensate(ctx context.Context, userID, accountID string, amount decimal.Decimal, ref portssvc.LedgerReference, description string, errorContext string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	_, _, refundErr := s.walletSvc.Credit(ctx, accountID, amount, domain.EntryShipmentRefund, ref, description, userID)
	if refundErr == nil {
		metrics.SagaOutcomesTotal.WithLabelValues("refunded").Inc()
		return nil
	}

	logger.Error("Synchronous refund failed, enqueueing compensation task",
		slog.String("account_id", accountID),
		slog.String("error", refundErr.Error()),
	)
	taskID, enqErr := s.compensationSvc.EnqueueRefund(ctx, userID, accountID, amount, ref,
		fmt.Sprintf("%s; refund: %v", errorContext, refundErr))
	if enqErr != nil {
		return fmt.Errorf("refund failed (%v) and compensation enqueue failed (%v)", refundErr, enqErr)
	}

	logger.Warn("Compensation task queued", slog.String("task_id", taskID))
	metrics.SagaOutcomesTotal.WithLabelValues("compensation_queued").Inc()
	return nil
}

// reconcile adjusts the speculative charge to the courier's actual cost and
// returns the net amount charged.
func (s *shipmentService) reconcile(ctx context.Context, userID, accountID string, estimated, actual decimal.Decimal, ref portssvc.LedgerReference) (decimal.Decimal, error) {
	delta := actual.Sub(estimated)
	switch {
	case delta.IsPositive():
		// Dimensional-weight style correction upward: debit the difference.
		if _, _, err := s.walletSvc.Debit(ctx, accountID, delta, domain.EntryShipmentAdjustment, ref, "shipment cost reconciliation", userID); err != nil {
			return decimal.Zero, err
		}
	case delta.IsNegative():
		if _, _, err := s.walletSvc.Credit(ctx, accountID, delta.Neg(), domain.EntryShipmentAdjustment, ref, "shipment cost reconciliation", userID); err != nil {
			return decimal.Zero, err
		}
	}
	return actual, nil
}

// CancelShipment cancels a booked shipment with the courier and refunds its
// actual cost.
func (s *shipmentService) CancelShipment(ctx context.Context, userID string, shipmentID string) (*dto.CancelShipmentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	shipment, err := s.shipmentRepo.FindShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.UserID != userID {
		return nil, fmt.Errorf("%w: shipment %s", apperrors.ErrOwnershipViolation, shipmentID)
	}
	if shipment.Status != domain.ShipmentCreated {
		return nil, fmt.Errorf("%w: shipment %s is %s", apperrors.ErrValidation, shipmentID, shipment.Status)
	}

	courierCtx, cancel := context.WithTimeout(ctx, s.courierTimeout)
	err = s.courier.CancelShipment(courierCtx, shipment.TrackingNumber)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	now := time.Now().UTC()
	if err := s.shipmentRepo.UpdateShipmentStatus(ctx, shipmentID, domain.ShipmentCancelled, userID, now); err != nil {
		return nil, err
	}

	ref := portssvc.LedgerReference{Type: "shipment", ID: shipmentID}
	_, _, refundErr := s.walletSvc.Credit(ctx, shipment.AccountID, shipment.ActualCost, domain.EntryShipmentRefund, ref, "refund after cancellation", userID)
	if refundErr != nil {
		taskID, enqErr := s.compensationSvc.EnqueueRefund(ctx, userID, shipment.AccountID, shipment.ActualCost, ref,
			fmt.Sprintf("cancellation refund: %v", refundErr))
		if enqErr != nil {
			return nil, fmt.Errorf("cancellation refund failed (%v) and compensation enqueue failed: %w", refundErr, enqErr)
		}
		logger.Warn("Cancellation refund queued as compensation task", slog.String("task_id", taskID))
	}

	return &dto.CancelShipmentResponse{
		ShipmentID: shipmentID,
		Status:     string(domain.ShipmentCancelled),
		Refund:     shipment.ActualCost,
	}, nil
}

// GetShipmentByID retrieves a shipment owned by the caller.
func (s *shipmentService) GetShipmentByID(ctx context.Context, userID string, shipmentID string) (*dto.ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.UserID != userID {
		return nil, fmt.Errorf("%w: shipment %s", apperrors.ErrOwnershipViolation, shipmentID)
	}
	return dto.ToShipmentResponse(shipment), nil
}
