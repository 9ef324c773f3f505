package domain

import (
	"github.com/shopspring/decimal"
)

// Account is one wallet balance per tenant user.
// The Balance column is a materialized projection of the account's ledger
// entries; it is mutated exclusively through the wallet ledger primitives and
// must always equal the sum of the account's signed entry amounts.
type Account struct {
	AccountID       string `json:"accountID"`       // Primary key (UUID)
	UserID          string `json:"userID"`          // Owning tenant user
	Name            string `json:"name"`            // Display name
	ParentAccountID string `json:"parentAccountID"` // Reseller parent; empty for top-level accounts
	IsActive        bool   `json:"isActive"`
	AuditFields
	Balance decimal.Decimal `json:"balance"`
}
