package pgsql

import (
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryContainer holds all pgsql repository implementations.
type RepositoryContainer struct {
	Wallet       portsrepo.WalletRepositoryFacade
	Shipment     portsrepo.ShipmentRepository
	Compensation portsrepo.CompensationRepository
	Idempotency  portsrepo.IdempotencyRepository
}

// NewRepositoryContainer wires all repositories over a shared pool.
func NewRepositoryContainer(pool *pgxpool.Pool) *RepositoryContainer {
	return &RepositoryContainer{
		Wallet:       NewWalletRepository(pool),
		Shipment:     NewShipmentRepository(pool),
		Compensation: NewCompensationRepository(pool),
		Idempotency:  NewIdempotencyRepository(pool),
	}
}
