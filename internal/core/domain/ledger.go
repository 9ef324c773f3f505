package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies why a ledger entry exists.
type EntryKind string

const (
	EntryShipmentCharge     EntryKind = "SHIPMENT_CHARGE"
	EntryShipmentRefund     EntryKind = "SHIPMENT_REFUND"
	EntryShipmentAdjustment EntryKind = "SHIPMENT_ADJUSTMENT"
	EntryTransferOut        EntryKind = "RESELLER_TRANSFER_OUT"
	EntryTransferIn         EntryKind = "RESELLER_TRANSFER_IN"
	EntryAdminAdjustment    EntryKind = "ADMIN_ADJUSTMENT"
	EntryCompensationRefund EntryKind = "COMPENSATION_REFUND"
)

// LedgerEntry is one append-only signed balance change against an account.
// Amount is negative for debits and positive for credits. Entries are never
// updated or deleted; corrections are expressed as new entries.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"` // Primary key (UUID)
	AccountID     string          `json:"accountID"`
	Amount        decimal.Decimal `json:"amount"` // Signed: negative = debit, positive = credit
	Kind          EntryKind       `json:"kind"`
	Description   string          `json:"description"`
	ReferenceType string          `json:"referenceType"` // e.g. "shipment", "transfer", "compensation_task"
	ReferenceID   string          `json:"referenceID"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}
