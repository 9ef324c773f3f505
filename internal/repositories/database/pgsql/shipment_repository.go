package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	"github.com/courierly/wallet-backend/internal/models"
	"github.com/courierly/wallet-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxShipmentRepository struct {
	BaseRepository
}

// NewShipmentRepository creates a new repository for shipment data.
func NewShipmentRepository(pool *pgxpool.Pool) portsrepo.ShipmentRepository {
	return &PgxShipmentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ShipmentRepository = (*PgxShipmentRepository)(nil)

// SaveShipment inserts a newly booked shipment.
func (r *PgxShipmentRepository) SaveShipment(ctx context.Context, shipment domain.Shipment) error {
	m := mapping.ToModelShipment(shipment)

	query := `
		INSERT INTO shipments (shipment_id, user_id, account_id, status, estimated_cost, actual_cost, tracking_number, label_payload, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ShipmentID, m.UserID, m.AccountID, m.Status, m.EstimatedCost, m.ActualCost,
		m.TrackingNumber, m.LabelPayload, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: shipment with ID %s already exists", apperrors.ErrDuplicate, m.ShipmentID)
		}
		return fmt.Errorf("failed to save shipment %s: %w", m.ShipmentID, err)
	}
	return nil
}

// FindShipmentByID retrieves a shipment by its ID.
func (r *PgxShipmentRepository) FindShipmentByID(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	query := `
		SELECT shipment_id, user_id, account_id, status, estimated_cost, actual_cost, tracking_number, label_payload, created_at, created_by, last_updated_at, last_updated_by
		FROM shipments
		WHERE shipment_id = $1;
	`
	var m models.Shipment
	err := r.Pool.QueryRow(ctx, query, shipmentID).Scan(
		&m.ShipmentID, &m.UserID, &m.AccountID, &m.Status, &m.EstimatedCost, &m.ActualCost,
		&m.TrackingNumber, &m.LabelPayload, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find shipment by ID %s: %w", shipmentID, err)
	}

	d := mapping.ToDomainShipment(m)
	return &d, nil
}

// UpdateShipmentStatus transitions a shipment's status.
func (r *PgxShipmentRepository) UpdateShipmentStatus(ctx context.Context, shipmentID string, status domain.ShipmentStatus, userID string, now time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx,
		`UPDATE shipments SET status = $2, last_updated_at = $3, last_updated_by = $4 WHERE shipment_id = $1`,
		shipmentID, string(status), now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of shipment %s: %w", shipmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
