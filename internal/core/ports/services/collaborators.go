package services

import (
	"context"

	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/courierly/wallet-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// CourierShipmentResult is what a courier returns for a successful booking.
// ActualCost may differ from the estimate (e.g. dimensional-weight correction).
type CourierShipmentResult struct {
	TrackingNumber string
	LabelPayload   string
	ActualCost     decimal.Decimal
}

// CourierAdapter is the boundary to the external courier service. Any
// non-success outcome, including a timeout, is treated uniformly as a courier
// failure by the saga.
type CourierAdapter interface {
	CreateShipment(ctx context.Context, userID string, details dto.ShipmentDetails) (*CourierShipmentResult, error)
	CancelShipment(ctx context.Context, trackingNumber string) error
}

// PricingSvc estimates shipment cost before any debit happens. Pure, no side
// effects.
type PricingSvc interface {
	Estimate(ctx context.Context, details dto.ShipmentDetails) (decimal.Decimal, error)
}

// HierarchyResolver answers ancestry questions over the account hierarchy,
// consulted before a reseller credit transfer is attempted.
type HierarchyResolver interface {
	IsAncestorOwner(ctx context.Context, resellerAccountID string, targetAccountID string) (bool, error)
}

// AlertNotifier receives structured events for conditions that need operator
// attention, e.g. a compensation task going FAILED_PERMANENT.
type AlertNotifier interface {
	NotifyCompensationFailure(ctx context.Context, task domain.CompensationTask)
}
