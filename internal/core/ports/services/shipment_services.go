package services

import (
	"context"

	"github.com/courierly/wallet-backend/internal/dto"
)

// ShipmentSvcFacade orchestrates the shipment creation saga: debit the
// estimated cost, call the courier, then reconcile the actual cost or refund.
type ShipmentSvcFacade interface {
	// CreateShipment runs the full saga under the given idempotency key.
	// Retried requests with the same key return the first attempt's outcome
	// without re-debiting or re-calling the courier.
	CreateShipment(ctx context.Context, userID string, req dto.CreateShipmentRequest, idempotencyKey string) (*dto.CreateShipmentResponse, error)

	// CancelShipment cancels a booked shipment with the courier and refunds
	// its actual cost to the wallet.
	CancelShipment(ctx context.Context, userID string, shipmentID string) (*dto.CancelShipmentResponse, error)

	// GetShipmentByID retrieves a shipment.
	GetShipmentByID(ctx context.Context, userID string, shipmentID string) (*dto.ShipmentResponse, error)
}

// TransferSvcFacade performs the atomic two-party reseller credit transfer.
type TransferSvcFacade interface {
	// Transfer moves amount from one account to another as a single atomic
	// unit. Preconditions (checked before any lock): positive amount within
	// the configured ceiling, distinct accounts, and the caller must be an
	// ancestor/owner of the destination account.
	Transfer(ctx context.Context, callerUserID string, req dto.TransferRequest, idempotencyKey string) (*dto.TransferResponse, error)
}
