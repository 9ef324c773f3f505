package models

import (
	"github.com/shopspring/decimal"
)

// Shipment represents a booked shipment row.
type Shipment struct {
	ShipmentID     string          `db:"shipment_id"`
	UserID         string          `db:"user_id"`
	AccountID      string          `db:"account_id"`
	Status         string          `db:"status"`
	EstimatedCost  decimal.Decimal `db:"estimated_cost"`
	ActualCost     decimal.Decimal `db:"actual_cost"`
	TrackingNumber string          `db:"tracking_number"`
	LabelPayload   string          `db:"label_payload"`
	AuditFields
}
