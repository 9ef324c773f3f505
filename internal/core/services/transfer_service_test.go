package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/core/services"
	"github.com/courierly/wallet-backend/internal/dto"
)

type TransferServiceTestSuite struct {
	suite.Suite
	mockRepo      *MockWalletRepository
	mockHierarchy *MockHierarchyResolver
	idempotency   *passthroughIdempotency
	service       portssvc.TransferSvcFacade

	callerUserID string
	fromID       string
	toID         string
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockWalletRepository)
	suite.mockHierarchy = new(MockHierarchyResolver)
	suite.idempotency = &passthroughIdempotency{}
	suite.service = services.NewTransferService(
		suite.mockRepo,
		suite.idempotency,
		suite.mockHierarchy,
		decimal.NewFromInt(10000),
	)

	suite.callerUserID = uuid.NewString()
	suite.fromID = uuid.NewString()
	suite.toID = uuid.NewString()
}

func (suite *TransferServiceTestSuite) request(amount decimal.Decimal) dto.TransferRequest {
	return dto.TransferRequest{
		FromAccountID: suite.fromID,
		ToAccountID:   suite.toID,
		Amount:        amount,
	}
}

func (suite *TransferServiceTestSuite) expectResolvedAccounts() {
	from := &domain.Account{AccountID: suite.fromID, UserID: suite.callerUserID, IsActive: true}
	to := &domain.Account{AccountID: suite.toID, UserID: uuid.NewString(), ParentAccountID: suite.fromID, IsActive: true}
	suite.mockRepo.On("FindAccountByID", mock.Anything, suite.fromID).Return(from, nil).Once()
	suite.mockRepo.On("FindAccountByID", mock.Anything, suite.toID).Return(to, nil).Once()
}

func (suite *TransferServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(150)
	suite.expectResolvedAccounts()
	suite.mockHierarchy.On("IsAncestorOwner", mock.Anything, suite.fromID, suite.toID).Return(true, nil).Once()

	suite.mockRepo.On("ApplyTransfer", mock.Anything,
		mock.MatchedBy(func(out domain.LedgerEntry) bool {
			return out.AccountID == suite.fromID &&
				out.Amount.Equal(amount.Neg()) &&
				out.Kind == domain.EntryTransferOut
		}),
		mock.MatchedBy(func(in domain.LedgerEntry) bool {
			return in.AccountID == suite.toID &&
				in.Amount.Equal(amount) &&
				in.Kind == domain.EntryTransferIn
		}),
	).Return(decimal.NewFromInt(850), decimal.NewFromInt(200), nil).Once()

	res, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(amount), "key-1")

	suite.Require().NoError(err)
	suite.Equal("COMPLETED", res.Status)
	suite.NotEmpty(res.TransferID)
	suite.False(res.IdempotentReplay)
	suite.True(res.FromBalance.Equal(decimal.NewFromInt(850)))
	suite.True(res.ToBalance.Equal(decimal.NewFromInt(200)))
	suite.Equal([]string{"key-1"}, suite.idempotency.keys)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestTransfer_PairedEntriesShareReference() {
	ctx := context.Background()
	amount := decimal.NewFromInt(10)
	suite.expectResolvedAccounts()
	suite.mockHierarchy.On("IsAncestorOwner", mock.Anything, suite.fromID, suite.toID).Return(true, nil).Once()

	var outEntry, inEntry domain.LedgerEntry
	suite.mockRepo.On("ApplyTransfer", mock.Anything, mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("domain.LedgerEntry")).
		Run(func(args mock.Arguments) {
			outEntry = args.Get(1).(domain.LedgerEntry)
			inEntry = args.Get(2).(domain.LedgerEntry)
		}).
		Return(decimal.NewFromInt(90), decimal.NewFromInt(10), nil).Once()

	_, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(amount), "key-2")

	suite.Require().NoError(err)
	suite.Equal("transfer", outEntry.ReferenceType)
	suite.Equal(outEntry.ReferenceID, inEntry.ReferenceID)
	suite.True(outEntry.Amount.Add(inEntry.Amount).IsZero())
}

func (suite *TransferServiceTestSuite) TestTransfer_RejectsNonPositiveAmount() {
	ctx := context.Background()

	_, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(decimal.Zero), "key-3")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Empty(suite.idempotency.keys)
}

func (suite *TransferServiceTestSuite) TestTransfer_RejectsAmountAboveCeiling() {
	ctx := context.Background()

	_, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(decimal.NewFromInt(10001)), "key-4")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_RejectsSelfTransfer() {
	ctx := context.Background()
	req := dto.TransferRequest{
		FromAccountID: suite.fromID,
		ToAccountID:   suite.fromID,
		Amount:        decimal.NewFromInt(5),
	}

	_, err := suite.service.Transfer(ctx, suite.callerUserID, req, "key-5")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSelfTransfer)
}

func (suite *TransferServiceTestSuite) TestTransfer_RejectsForeignSourceAccount() {
	ctx := context.Background()
	from := &domain.Account{AccountID: suite.fromID, UserID: uuid.NewString()}
	suite.mockRepo.On("FindAccountByID", mock.Anything, suite.fromID).Return(from, nil).Once()

	_, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(decimal.NewFromInt(5)), "key-6")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrOwnershipViolation)
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_RejectsDestinationOutsideSubtree() {
	ctx := context.Background()
	suite.expectResolvedAccounts()
	suite.mockHierarchy.On("IsAncestorOwner", mock.Anything, suite.fromID, suite.toID).Return(false, nil).Once()

	_, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(decimal.NewFromInt(5)), "key-7")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrOwnershipViolation)
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestTransfer_PropagatesInsufficientFunds() {
	ctx := context.Background()
	suite.expectResolvedAccounts()
	suite.mockHierarchy.On("IsAncestorOwner", mock.Anything, suite.fromID, suite.toID).Return(true, nil).Once()
	suite.mockRepo.On("ApplyTransfer", mock.Anything, mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("domain.LedgerEntry")).
		Return(decimal.Zero, decimal.Zero, apperrors.ErrInsufficientFunds).Once()

	_, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(decimal.NewFromInt(5000)), "key-8")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *TransferServiceTestSuite) TestTransfer_ReplayReturnsStoredOutcome() {
	ctx := context.Background()
	suite.expectResolvedAccounts()
	suite.mockHierarchy.On("IsAncestorOwner", mock.Anything, suite.fromID, suite.toID).Return(true, nil).Once()
	suite.idempotency.replay = []byte(`{"status":"COMPLETED","transferID":"t-1","amount":"150"}`)

	res, err := suite.service.Transfer(ctx, suite.callerUserID, suite.request(decimal.NewFromInt(150)), "key-9")

	suite.Require().NoError(err)
	suite.True(res.IdempotentReplay)
	suite.Equal("t-1", res.TransferID)
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
