package dto

import (
	"time"

	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ShipmentDetails carries the physical parameters the pricing subsystem and
// the courier need to quote and book a shipment.
type ShipmentDetails struct {
	WeightKg        decimal.Decimal `json:"weightKg" binding:"required,decimalgt0"`
	LengthCm        decimal.Decimal `json:"lengthCm"`
	WidthCm         decimal.Decimal `json:"widthCm"`
	HeightCm        decimal.Decimal `json:"heightCm"`
	DestinationZone string          `json:"destinationZone" binding:"required"`
	ServiceLevel    string          `json:"serviceLevel" binding:"required,oneof=STANDARD EXPRESS"`
}

// CreateShipmentRequest defines the data needed to create a shipment.
type CreateShipmentRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Details   ShipmentDetails `json:"details" binding:"required"`
}

// ShipmentResponse defines the data returned for a shipment.
type ShipmentResponse struct {
	ShipmentID     string          `json:"shipmentID"`
	UserID         string          `json:"userID"`
	AccountID      string          `json:"accountID"`
	Status         string          `json:"status"`
	EstimatedCost  decimal.Decimal `json:"estimatedCost"`
	ActualCost     decimal.Decimal `json:"actualCost"`
	TrackingNumber string          `json:"trackingNumber"`
	LabelPayload   string          `json:"labelPayload"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ToShipmentResponse converts a domain.Shipment to ShipmentResponse DTO
func ToShipmentResponse(s *domain.Shipment) *ShipmentResponse {
	if s == nil {
		return nil
	}
	return &ShipmentResponse{
		ShipmentID:     s.ShipmentID,
		UserID:         s.UserID,
		AccountID:      s.AccountID,
		Status:         string(s.Status),
		EstimatedCost:  s.EstimatedCost,
		ActualCost:     s.ActualCost,
		TrackingNumber: s.TrackingNumber,
		LabelPayload:   s.LabelPayload,
		CreatedAt:      s.CreatedAt,
	}
}

// CreateShipmentResponse is the saga outcome returned to the caller. It is
// also the payload serialized into the idempotency record, so a replayed
// request returns a byte-identical outcome.
type CreateShipmentResponse struct {
	Status           string            `json:"status"` // CREATED
	Shipment         *ShipmentResponse `json:"shipment,omitempty"`
	Charge           decimal.Decimal   `json:"charge"` // Net amount debited
	IdempotentReplay bool              `json:"idempotentReplay"`
}

// CancelShipmentResponse is returned after a shipment cancellation.
type CancelShipmentResponse struct {
	ShipmentID string          `json:"shipmentID"`
	Status     string          `json:"status"`
	Refund     decimal.Decimal `json:"refund"`
}
