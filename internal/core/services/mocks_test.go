package services_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/courierly/wallet-backend/internal/core/domain"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// MockWalletRepository is a mock type for the WalletRepositoryFacade interface
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockWalletRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockWalletRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletRepository) SumEntriesByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletRepository) IsAncestorAccount(ctx context.Context, ancestorID string, accountID string) (bool, error) {
	args := m.Called(ctx, ancestorID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepository) ApplyEntry(ctx context.Context, entry domain.LedgerEntry) (decimal.Decimal, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletRepository) ApplyTransfer(ctx context.Context, out domain.LedgerEntry, in domain.LedgerEntry) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, out, in)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

// MockIdempotencyRepository is a mock type for the IdempotencyRepository interface
type MockIdempotencyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyRepository) InsertRecord(ctx context.Context, record domain.IdempotencyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) FindRecord(ctx context.Context, key string, scope string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, key, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

func (m *MockIdempotencyRepository) MarkCompleted(ctx context.Context, key string, scope string, payload json.RawMessage, now time.Time) error {
	args := m.Called(ctx, key, scope, payload, now)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) MarkFailed(ctx context.Context, key string, scope string, errorContext string, now time.Time) error {
	args := m.Called(ctx, key, scope, errorContext, now)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) TakeOverStale(ctx context.Context, key string, scope string, staleBefore time.Time, now time.Time) (bool, error) {
	args := m.Called(ctx, key, scope, staleBefore, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyRepository) ResetFailed(ctx context.Context, key string, scope string, now time.Time) (bool, error) {
	args := m.Called(ctx, key, scope, now)
	return args.Bool(0), args.Error(1)
}

// MockShipmentRepository is a mock type for the ShipmentRepository interface
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) SaveShipment(ctx context.Context, shipment domain.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindShipmentByID(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) UpdateShipmentStatus(ctx context.Context, shipmentID string, status domain.ShipmentStatus, userID string, now time.Time) error {
	args := m.Called(ctx, shipmentID, status, userID, now)
	return args.Error(0)
}

// MockCompensationRepository is a mock type for the CompensationRepository interface
type MockCompensationRepository struct {
	mock.Mock
}

func (m *MockCompensationRepository) EnqueueTask(ctx context.Context, task domain.CompensationTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockCompensationRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.CompensationTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompensationTask), args.Error(1)
}

func (m *MockCompensationRepository) ClaimDueTasks(ctx context.Context, limit int, now time.Time, staleBefore time.Time) ([]domain.CompensationTask, error) {
	args := m.Called(ctx, limit, now, staleBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompensationTask), args.Error(1)
}

func (m *MockCompensationRepository) MarkTaskDone(ctx context.Context, taskID string, now time.Time) error {
	args := m.Called(ctx, taskID, now)
	return args.Error(0)
}

func (m *MockCompensationRepository) MarkTaskRetry(ctx context.Context, taskID string, retryCount int, nextAttemptAt time.Time, errorContext string, now time.Time) error {
	args := m.Called(ctx, taskID, retryCount, nextAttemptAt, errorContext, now)
	return args.Error(0)
}

func (m *MockCompensationRepository) MarkTaskFailedPermanent(ctx context.Context, taskID string, errorContext string, now time.Time) error {
	args := m.Called(ctx, taskID, errorContext, now)
	return args.Error(0)
}

// MockWalletSvc is a mock type for the WalletSvcFacade interface
type MockWalletSvc struct {
	mock.Mock
}

func (m *MockWalletSvc) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockWalletSvc) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockWalletSvc) ListEntries(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockWalletSvc) VerifyBalance(ctx context.Context, accountID string) (*dto.BalanceVerificationResponse, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BalanceVerificationResponse), args.Error(1)
}

func (m *MockWalletSvc) Debit(ctx context.Context, accountID string, amount decimal.Decimal, kind domain.EntryKind, ref portssvc.LedgerReference, description string, actorUserID string) (*domain.LedgerEntry, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount, kind, ref, description, actorUserID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockWalletSvc) Credit(ctx context.Context, accountID string, amount decimal.Decimal, kind domain.EntryKind, ref portssvc.LedgerReference, description string, actorUserID string) (*domain.LedgerEntry, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount, kind, ref, description, actorUserID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Get(1).(decimal.Decimal), args.Error(2)
}

// MockCourierAdapter is a mock type for the CourierAdapter interface
type MockCourierAdapter struct {
	mock.Mock
}

func (m *MockCourierAdapter) CreateShipment(ctx context.Context, userID string, details dto.ShipmentDetails) (*portssvc.CourierShipmentResult, error) {
	args := m.Called(ctx, userID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.CourierShipmentResult), args.Error(1)
}

func (m *MockCourierAdapter) CancelShipment(ctx context.Context, trackingNumber string) error {
	args := m.Called(ctx, trackingNumber)
	return args.Error(0)
}

// MockPricingSvc is a mock type for the PricingSvc interface
type MockPricingSvc struct {
	mock.Mock
}

func (m *MockPricingSvc) Estimate(ctx context.Context, details dto.ShipmentDetails) (decimal.Decimal, error) {
	args := m.Called(ctx, details)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockHierarchyResolver is a mock type for the HierarchyResolver interface
type MockHierarchyResolver struct {
	mock.Mock
}

func (m *MockHierarchyResolver) IsAncestorOwner(ctx context.Context, resellerAccountID string, targetAccountID string) (bool, error) {
	args := m.Called(ctx, resellerAccountID, targetAccountID)
	return args.Bool(0), args.Error(1)
}

// MockAlertNotifier is a mock type for the AlertNotifier interface
type MockAlertNotifier struct {
	mock.Mock
}

func (m *MockAlertNotifier) NotifyCompensationFailure(ctx context.Context, task domain.CompensationTask) {
	m.Called(ctx, task)
}

// MockCompensationSvc is a mock type for the CompensationSvcFacade interface
type MockCompensationSvc struct {
	mock.Mock
}

func (m *MockCompensationSvc) EnqueueRefund(ctx context.Context, userID string, accountID string, amount decimal.Decimal, ref portssvc.LedgerReference, errorContext string) (string, error) {
	args := m.Called(ctx, userID, accountID, amount, ref, errorContext)
	return args.String(0), args.Error(1)
}

func (m *MockCompensationSvc) ProcessDueTasks(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCompensationSvc) GetTaskByID(ctx context.Context, taskID string) (*domain.CompensationTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompensationTask), args.Error(1)
}

// passthroughIdempotency runs the wrapped function directly and records the
// keys it saw. Setting replay short-circuits Execute with a stored payload,
// mimicking a completed record.
type passthroughIdempotency struct {
	keys   []string
	scopes []string
	replay json.RawMessage
}

func (p *passthroughIdempotency) Execute(ctx context.Context, key string, scope string, fn portssvc.IdempotentFn) (json.RawMessage, bool, error) {
	p.keys = append(p.keys, key)
	p.scopes = append(p.scopes, scope)
	if p.replay != nil {
		return p.replay, true, nil
	}
	payload, err := fn(ctx)
	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}
