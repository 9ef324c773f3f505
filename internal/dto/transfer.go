package dto

import (
	"github.com/shopspring/decimal"
)

// TransferRequest defines the data needed for a reseller credit transfer.
// Amount is always positive; direction is given by from/to.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,decimalgt0"`
	Description   string          `json:"description"`
}

// TransferResponse is the transfer outcome returned to the caller and stored
// as the idempotency result payload.
type TransferResponse struct {
	Status           string          `json:"status"` // COMPLETED
	TransferID       string          `json:"transferID"`
	FromAccountID    string          `json:"fromAccountID"`
	ToAccountID      string          `json:"toAccountID"`
	Amount           decimal.Decimal `json:"amount"`
	FromBalance      decimal.Decimal `json:"fromBalance"`
	ToBalance        decimal.Decimal `json:"toBalance"`
	IdempotentReplay bool            `json:"idempotentReplay"`
}
