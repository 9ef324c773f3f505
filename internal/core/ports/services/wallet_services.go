package services

import (
	"context"

	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/courierly/wallet-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReference links a ledger entry back to the operation that caused it.
type LedgerReference struct {
	Type string // e.g. "shipment", "transfer", "compensation_task"
	ID   string
}

// WalletReaderSvc defines read operations on wallet accounts.
type WalletReaderSvc interface {
	// GetAccountByID retrieves an account and its cached balance.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListEntries retrieves a paginated list of ledger entries for an account.
	ListEntries(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// VerifyBalance recomputes the ledger sum for an account and compares it
	// against the cached balance.
	VerifyBalance(ctx context.Context, accountID string) (*dto.BalanceVerificationResponse, error)
}

// WalletWriterSvc defines the wallet ledger primitives. Both operations take a
// strictly positive amount; the sign is implied by the operation so that
// callers can never pass a mis-signed value.
type WalletWriterSvc interface {
	// CreateAccount persists a new wallet account with a zero balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// Debit atomically subtracts amount from the account balance and appends a
	// ledger entry. Fails with apperrors.ErrInsufficientFunds, writing
	// nothing, when the balance would go negative.
	Debit(ctx context.Context, accountID string, amount decimal.Decimal, kind domain.EntryKind, ref LedgerReference, description string, actorUserID string) (*domain.LedgerEntry, decimal.Decimal, error)

	// Credit atomically adds amount to the account balance and appends a
	// ledger entry.
	Credit(ctx context.Context, accountID string, amount decimal.Decimal, kind domain.EntryKind, ref LedgerReference, description string, actorUserID string) (*domain.LedgerEntry, decimal.Decimal, error)
}

// WalletSvcFacade combines all wallet-related service interfaces
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletWriterSvc
}
