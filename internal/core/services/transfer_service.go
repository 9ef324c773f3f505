package services

import (
	"context"
	"encoding/json"
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

const ScopeTransfer = "transfer.execute"

// transferService moves credit between a reseller account and an account in
// its subtree. The two ledger entries commit in one transaction, so no
// interleaving can observe the debit without the credit.
type transferService struct {
	walletRepo     portsrepo.WalletRepositoryFacade
	idempotencySvc portssvc.IdempotencySvcFacade
	hierarchy      portssvc.HierarchyResolver
	ceiling        decimal.Decimal
}

// NewTransferService creates a new TransferService.
func NewTransferService(
	walletRepo portsrepo.WalletRepositoryFacade,
	idempotencySvc portssvc.IdempotencySvcFacade,
	hierarchy portssvc.HierarchyResolver,
	ceiling decimal.Decimal,
) portssvc.TransferSvcFacade {
	return &transferService{
		walletRepo:     walletRepo,
		idempotencySvc: idempotencySvc,
		hierarchy:      hierarchy,
		ceiling:        ceiling,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// Transfer validates the request, then executes the paired debit/credit under
// the caller's idempotency key. All preconditions are checked before any row
// lock is taken.
func (s *transferService) Transfer(ctx context.Context, callerUserID string, req dto.TransferRequest, idempotencyKey string) (*dto.TransferResponse, error) {
	if err := s.checkPreconditions(ctx, callerUserID, req); err != nil {
		metrics.TransfersTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	payload, replayed, err := s.idempotencySvc.Execute(ctx, idempotencyKey, ScopeTransfer, func(ctx context.Context) (json.RawMessage, error) {
		outcome, err := s.execute(ctx, callerUserID, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(outcome)
	})
	if err != nil {
		metrics.TransfersTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode transfer outcome: %w", err)
	}
	resp.IdempotentReplay = replayed
	if !replayed {
		metrics.TransfersTotal.WithLabelValues("completed").Inc()
	}
	return &resp, nil
}

func (s *transferService) checkPreconditions(ctx context.Context, callerUserID string, req dto.TransferRequest) error {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: transfer amount must be positive, got %s", apperrors.ErrValidation, req.Amount.String())
	}
	if req.Amount.GreaterThan(s.ceiling) {
		return fmt.Errorf("%w: transfer amount %s exceeds ceiling %s", apperrors.ErrValidation, req.Amount.String(), s.ceiling.String())
	}
	if req.FromAccountID == req.ToAccountID {
		return fmt.Errorf("%w: from and to accounts are identical", apperrors.ErrSelfTransfer)
	}

	from, err := s.walletRepo.FindAccountByID(ctx, req.FromAccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve source account: %w", err)
	}
	if from.UserID != callerUserID {
		return fmt.Errorf("%w: account %s", apperrors.ErrOwnershipViolation, req.FromAccountID)
	}
	if _, err := s.walletRepo.FindAccountByID(ctx, req.ToAccountID); err != nil {
		return fmt.Errorf("failed to resolve destination account: %w", err)
	}

	allowed, err := s.hierarchy.IsAncestorOwner(ctx, req.FromAccountID, req.ToAccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve account hierarchy: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%w: account %s is not in the subtree of %s", apperrors.ErrOwnershipViolation, req.ToAccountID, req.FromAccountID)
	}
	return nil
}

// execute performs the atomic debit/credit pair. Only reached when the
// idempotency coordinator granted ownership of the key.
func (s *transferService) execute(ctx context.Context, callerUserID string, req dto.TransferRequest) (*dto.TransferResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transferID := uuid.NewString()
	now := time.Now().UTC()
	description := req.Description
	if description == "" {
		description = "reseller credit transfer"
	}

	out := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		AccountID:     req.FromAccountID,
		Amount:        req.Amount.Neg(),
		Kind:          domain.EntryTransferOut,
		Description:   description,
		ReferenceType: "transfer",
		ReferenceID:   transferID,
		CreatedAt:     now,
		CreatedBy:     callerUserID,
	}
	in := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		AccountID:     req.ToAccountID,
		Amount:        req.Amount,
		Kind:          domain.EntryTransferIn,
		Description:   description,
		ReferenceType: "transfer",
		ReferenceID:   transferID,
		CreatedAt:     now,
		CreatedBy:     callerUserID,
	}

	fromBalance, toBalance, err := s.walletRepo.ApplyTransfer(ctx, out, in)
	if err != nil {
		return nil, err
	}

	logger.Info("Transfer completed",
		slog.String("transfer_id", transferID),
		slog.String("from_account_id", req.FromAccountID),
		slog.String("to_account_id", req.ToAccountID),
		slog.String("amount", req.Amount.String()),
	)

	return &dto.TransferResponse{
		Status:        "COMPLETED",
		TransferID:    transferID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		FromBalance:   fromBalance,
		ToBalance:     toBalance,
	}, nil
}
