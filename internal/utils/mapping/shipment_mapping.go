package mapping

import (
	"github.com/courierly/wallet-backend/internal/core/domain"
	"github.com/courierly/wallet-backend/internal/models"
)

// ToModelShipment converts a domain Shipment to a model Shipment
func ToModelShipment(d domain.Shipment) models.Shipment {
	return models.Shipment{
		ShipmentID:     d.ShipmentID,
		UserID:         d.UserID,
		AccountID:      d.AccountID,
		Status:         string(d.Status),
		EstimatedCost:  d.EstimatedCost,
		ActualCost:     d.ActualCost,
		TrackingNumber: d.TrackingNumber,
		LabelPayload:   d.LabelPayload,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainShipment converts a model Shipment to a domain Shipment
func ToDomainShipment(m models.Shipment) domain.Shipment {
	return domain.Shipment{
		ShipmentID:     m.ShipmentID,
		UserID:         m.UserID,
		AccountID:      m.AccountID,
		Status:         domain.ShipmentStatus(m.Status),
		EstimatedCost:  m.EstimatedCost,
		ActualCost:     m.ActualCost,
		TrackingNumber: m.TrackingNumber,
		LabelPayload:   m.LabelPayload,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
