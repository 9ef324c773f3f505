package services

import (
	"context"
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
	"github.com/shopspring/decimal"
)

// walletService implements the wallet ledger primitives. It is the only
// component that mutates account balances; every change is the atomic pair
// (append entry, update cached balance) performed by the repository.
type walletService struct {
	walletRepo portsrepo.WalletRepositoryFacade
}

// NewWalletService creates a new WalletService.
func NewWalletService(walletRepo portsrepo.WalletRepositoryFacade) portssvc.WalletSvcFacade {
	return &walletService{walletRepo: walletRepo}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// CreateAccount persists a new wallet account with a zero balance.
func (s *walletService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID: uuid.NewString(),
		UserID:    req.UserID,
		Name:      req.Name,
		IsActive:  true,
		Balance:   decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.walletRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent account: %w", err)
		}
		account.ParentAccountID = parent.AccountID
	}

	if err := s.walletRepo.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("user_id", account.UserID))
	return &account, nil
}

// GetAccountByID retrieves an account and its cached balance.
func (s *walletService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.walletRepo.FindAccountByID(ctx, accountID)
}

// Debit atomically subtracts amount from the account balance.
// The caller passes a strictly positive amount; the negative sign is applied
// here so that a mis-signed caller value cannot flip a debit into a credit.
func (s *walletService) Debit(ctx context.Context, accountID string, amount decimal.Decimal, kind domain.EntryKind, ref portssvc.LedgerReference, description string, actorUserID string) (*domain.LedgerEntry, decimal.Decimal, error) {
	return s.apply(ctx, accountID, amount.Neg(), amount, kind, ref, description, actorUserID)
}

// Credit atomically adds amount to the account balance.
func (s *walletService) Credit(ctx context.Context, accountID string, amount decimal.Decimal, kind domain.EntryKind, ref portssvc.LedgerReference, description string, actorUserID string) (*domain.LedgerEntry, decimal.Decimal, error) {
	return s.apply(ctx, accountID, amount, amount, kind, ref, description, actorUserID)
}

func (s *walletService) apply(ctx context.Context, accountID string, signedAmount, rawAmount decimal.Decimal, kind domain.EntryKind, ref portssvc.LedgerReference, description string, actorUserID string) (*domain.LedgerEntry, decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if rawAmount.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, rawAmount.String())
	}

	entry := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		AccountID:     accountID,
		Amount:        signedAmount,
		Kind:          kind,
		Description:   description,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     actorUserID,
	}

	newBalance, err := s.walletRepo.ApplyEntry(ctx, entry)
	if err != nil {
		return nil, decimal.Zero, err
	}

	logger.Info("Ledger entry applied",
		slog.String("entry_id", entry.EntryID),
		slog.String("account_id", accountID),
		slog.String("kind", string(kind)),
		slog.String("amount", signedAmount.String()),
		slog.String("new_balance", newBalance.String()),
	)
	return &entry, newBalance, nil
}

// ListEntries retrieves a paginated list of ledger entries for an account.
func (s *walletService) ListEntries(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if _, err := s.walletRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	entries, err := s.walletRepo.ListEntriesByAccount(ctx, accountID, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	res := dto.ToListEntriesResponse(entries)
	return &res, nil
}

// VerifyBalance recomputes the ledger sum for an account and compares it
// against the cached balance projection.
func (s *walletService) VerifyBalance(ctx context.Context, accountID string) (*dto.BalanceVerificationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.walletRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	sum, err := s.walletRepo.SumEntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	consistent := account.Balance.Equal(sum)
	if !consistent {
		logger.Error("Ledger/balance mismatch detected",
			slog.String("account_id", accountID),
			slog.String("cached_balance", account.Balance.String()),
			slog.String("ledger_sum", sum.String()),
		)
	}

	return &dto.BalanceVerificationResponse{
		AccountID:     accountID,
		CachedBalance: account.Balance,
		LedgerSum:     sum,
		Consistent:    consistent,
	}, nil
}
