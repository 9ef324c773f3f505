package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry represents one append-only row in ledger_entries.
type LedgerEntry struct {
	EntryID       string          `db:"entry_id"`
	AccountID     string          `db:"account_id"`
	Amount        decimal.Decimal `db:"amount"` // Signed
	Kind          string          `db:"kind"`
	Description   string          `db:"description"`
	ReferenceType string          `db:"reference_type"`
	ReferenceID   string          `db:"reference_id"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}
