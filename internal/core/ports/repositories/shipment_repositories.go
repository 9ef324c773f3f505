package repositories

import (
	"context"
	"time"

	"github.com/courierly/wallet-backend/internal/core/domain"
)

// ShipmentRepository defines persistence operations for shipments.
// Shipment rows are created only after a successful courier response.
type ShipmentRepository interface {
	// SaveShipment persists a newly booked shipment.
	SaveShipment(ctx context.Context, shipment domain.Shipment) error

	// FindShipmentByID retrieves a shipment by its ID.
	FindShipmentByID(ctx context.Context, shipmentID string) (*domain.Shipment, error)

	// UpdateShipmentStatus transitions a shipment's status.
	UpdateShipmentStatus(ctx context.Context, shipmentID string, status domain.ShipmentStatus, userID string, now time.Time) error
}
