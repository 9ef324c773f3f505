package domain

import (
	"github.com/shopspring/decimal"
)

// ShipmentStatus indicates the state of a shipment row.
type ShipmentStatus string

const (
	ShipmentCreated   ShipmentStatus = "CREATED"
	ShipmentCancelled ShipmentStatus = "CANCELLED"
)

// Shipment records a successfully booked courier shipment.
// A row exists only after the courier accepted the request; shipments are
// never created speculatively before the courier responds.
type Shipment struct {
	ShipmentID     string          `json:"shipmentID"` // Primary key (UUID)
	UserID         string          `json:"userID"`
	AccountID      string          `json:"accountID"` // Wallet debited for this shipment
	Status         ShipmentStatus  `json:"status"`
	EstimatedCost  decimal.Decimal `json:"estimatedCost"`
	ActualCost     decimal.Decimal `json:"actualCost"`
	TrackingNumber string          `json:"trackingNumber"`
	LabelPayload   string          `json:"labelPayload"` // Base64 label data from the courier
	AuditFields
}
