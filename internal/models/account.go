package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a wallet account row.
type Account struct {
	AccountID       string `db:"account_id"`
	UserID          string `db:"user_id"`
	Name            string `db:"name"`
	ParentAccountID string `db:"parent_account_id"` // Nullable
	IsActive        bool   `db:"is_active"`
	AuditFields
	Balance decimal.Decimal `db:"balance"`
}
