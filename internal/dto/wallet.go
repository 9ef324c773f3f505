package dto

import (
	"time"

	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new wallet account.
type CreateAccountRequest struct {
	UserID          string  `json:"userID" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	ParentAccountID *string `json:"parentAccountID"` // Optional reseller parent
}

// AccountResponse defines the data returned for a wallet account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	UserID          string          `json:"userID"`
	Name            string          `json:"name"`
	ParentAccountID string          `json:"parentAccountID"` // Empty string if null in DB
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		UserID:          acc.UserID,
		Name:            acc.Name,
		ParentAccountID: acc.ParentAccountID,
		IsActive:        acc.IsActive,
		Balance:         acc.Balance,
		CreatedAt:       acc.CreatedAt,
	}
}

// LedgerEntryResponse defines the data returned for a single ledger entry.
type LedgerEntryResponse struct {
	EntryID       string          `json:"entryID"`
	AccountID     string          `json:"accountID"`
	Amount        decimal.Decimal `json:"amount"` // Signed: negative = debit
	Kind          string          `json:"kind"`
	Description   string          `json:"description"`
	ReferenceType string          `json:"referenceType"`
	ReferenceID   string          `json:"referenceID"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its DTO
func ToLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:       e.EntryID,
		AccountID:     e.AccountID,
		Amount:        e.Amount,
		Kind:          string(e.Kind),
		Description:   e.Description,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedAt:     e.CreatedAt,
	}
}

// ListEntriesParams defines query parameters for listing ledger entries.
type ListEntriesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListEntriesResponse wraps the list of ledger entries.
type ListEntriesResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
}

// ToListEntriesResponse converts domain ledger entries to the list DTO
func ToListEntriesResponse(entries []domain.LedgerEntry) ListEntriesResponse {
	res := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToLedgerEntryResponse(e)
	}
	return ListEntriesResponse{Entries: res}
}

// BalanceVerificationResponse reports whether the cached balance matches the
// sum of the account's ledger entries.
type BalanceVerificationResponse struct {
	AccountID     string          `json:"accountID"`
	CachedBalance decimal.Decimal `json:"cachedBalance"`
	LedgerSum     decimal.Decimal `json:"ledgerSum"`
	Consistent    bool            `json:"consistent"`
}
