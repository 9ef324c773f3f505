package services

import (
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/platform/config"
	"github.com/courierly/wallet-backend/internal/repositories/database/pgsql"
)

// NewServiceContainer wires all application services over the repository
// container and the external collaborators.
func NewServiceContainer(
	repos *pgsql.RepositoryContainer,
	pricingSvc portssvc.PricingSvc,
	courier portssvc.CourierAdapter,
	alertNotifier portssvc.AlertNotifier,
	cfg *config.Config,
) *portssvc.ServiceContainer {
	walletSvc := NewWalletService(repos.Wallet)
	idempotencySvc := NewIdempotencyService(repos.Idempotency, cfg.IdempotencyStaleAfter)
	compensationSvc := NewCompensationService(
		repos.Compensation,
		walletSvc,
		idempotencySvc,
		alertNotifier,
		cfg.CompensationBaseDelay,
		cfg.CompensationMaxDelay,
		cfg.MaxCompensationRetry,
		cfg.WorkerBatchSize,
		cfg.CompensationStaleAfter,
	)
	shipmentSvc := NewShipmentService(
		walletSvc,
		idempotencySvc,
		compensationSvc,
		repos.Shipment,
		pricingSvc,
		courier,
		cfg.CourierTimeout,
	)
	transferSvc := NewTransferService(
		repos.Wallet,
		idempotencySvc,
		NewHierarchyResolver(repos.Wallet),
		cfg.TransferCeiling,
	)

	return &portssvc.ServiceContainer{
		Wallet:       walletSvc,
		Idempotency:  idempotencySvc,
		Shipment:     shipmentSvc,
		Transfer:     transferSvc,
		Compensation: compensationSvc,
	}
}
