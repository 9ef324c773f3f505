package repositories

import (
	"context"

	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletReader defines read operations for account and ledger data
type WalletReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListEntriesByAccount retrieves a paginated list of ledger entries for an account,
	// newest first.
	ListEntriesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error)

	// SumEntriesByAccount returns the sum of all signed entry amounts for an account.
	// Used to verify the cached balance against the append-only ledger.
	SumEntriesByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)

	// IsAncestorAccount reports whether ancestorID appears in the parent chain of accountID.
	IsAncestorAccount(ctx context.Context, ancestorID string, accountID string) (bool, error)
}

// WalletWriter defines write operations for account data
type WalletWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// LedgerApplier defines the atomic balance-changing primitives. Each call is a
// single unit of work: lock the account row, validate, append the entry,
// update the cached balance, commit.
type LedgerApplier interface {
	// ApplyEntry appends a signed ledger entry and adjusts the account balance
	// atomically. A negative amount that would take the balance below zero
	// fails with apperrors.ErrInsufficientFunds and writes nothing.
	ApplyEntry(ctx context.Context, entry domain.LedgerEntry) (decimal.Decimal, error)

	// ApplyTransfer appends a debit entry on one account and a credit entry on
	// another as one atomic unit. Row locks are taken in ascending account-ID
	// order regardless of direction so that opposing concurrent transfers
	// cannot deadlock. Returns the new balances of the debit and credit
	// accounts respectively.
	ApplyTransfer(ctx context.Context, out domain.LedgerEntry, in domain.LedgerEntry) (decimal.Decimal, decimal.Decimal, error)
}

// WalletRepositoryFacade combines all wallet-related repository interfaces
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
	LedgerApplier
}
