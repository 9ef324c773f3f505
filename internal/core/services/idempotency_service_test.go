package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/core/services"
)

const testIdemStaleAfter = 5 * time.Minute

type IdempotencyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockIdempotencyRepository
	service  portssvc.IdempotencySvcFacade
}

func (suite *IdempotencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockIdempotencyRepository)
	suite.service = services.NewIdempotencyService(suite.mockRepo, testIdemStaleAfter)
}

func (suite *IdempotencyServiceTestSuite) TestExecute_FirstAttempt() {
	ctx := context.Background()
	key := uuid.NewString()
	expected := json.RawMessage(`{"status":"CREATED"}`)

	suite.mockRepo.On("InsertRecord", ctx, mock.AnythingOfType("domain.IdempotencyRecord")).Return(nil).Once()
	suite.mockRepo.On("MarkCompleted", ctx, key, "shipment.create", expected, mock.AnythingOfType("time.Time")).Return(nil).Once()

	calls := 0
	payload, replayed, err := suite.service.Execute(ctx, key, "shipment.create", func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return expected, nil
	})

	suite.Require().NoError(err)
	suite.False(replayed)
	suite.JSONEq(string(expected), string(payload))
	suite.Equal(1, calls)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_EmptyKeyRejected() {
	ctx := context.Background()

	_, _, err := suite.service.Execute(ctx, "", "shipment.create", func(ctx context.Context) (json.RawMessage, error) {
		suite.FailNow("function must not run without a key")
		return nil, nil
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "InsertRecord", mock.Anything, mock.Anything)
}

func (suite *IdempotencyServiceTestSuite) TestExecute_ReplaysCompletedPayload() {
	ctx := context.Background()
	key := uuid.NewString()
	stored := json.RawMessage(`{"transferID":"abc"}`)

	suite.mockRepo.On("InsertRecord", ctx, mock.AnythingOfType("domain.IdempotencyRecord")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindRecord", ctx, key, "transfer.execute").Return(&domain.IdempotencyRecord{
		Key:           key,
		Scope:         "transfer.execute",
		Status:        domain.IdempotencyCompleted,
		ResultPayload: stored,
	}, nil).Once()

	payload, replayed, err := suite.service.Execute(ctx, key, "transfer.execute", func(ctx context.Context) (json.RawMessage, error) {
		suite.FailNow("function must not run on replay")
		return nil, nil
	})

	suite.Require().NoError(err)
	suite.True(replayed)
	suite.JSONEq(string(stored), string(payload))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_ReExecutesAfterFailure() {
	ctx := context.Background()
	key := uuid.NewString()
	expected := json.RawMessage(`{"ok":true}`)

	suite.mockRepo.On("InsertRecord", ctx, mock.AnythingOfType("domain.IdempotencyRecord")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindRecord", ctx, key, "transfer.execute").Return(&domain.IdempotencyRecord{
		Key:    key,
		Scope:  "transfer.execute",
		Status: domain.IdempotencyFailed,
	}, nil).Once()
	suite.mockRepo.On("ResetFailed", ctx, key, "transfer.execute", mock.AnythingOfType("time.Time")).Return(true, nil).Once()
	suite.mockRepo.On("MarkCompleted", ctx, key, "transfer.execute", expected, mock.AnythingOfType("time.Time")).Return(nil).Once()

	payload, replayed, err := suite.service.Execute(ctx, key, "transfer.execute", func(ctx context.Context) (json.RawMessage, error) {
		return expected, nil
	})

	suite.Require().NoError(err)
	suite.False(replayed)
	suite.JSONEq(string(expected), string(payload))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_LiveInProgressRejected() {
	ctx := context.Background()
	key := uuid.NewString()

	suite.mockRepo.On("InsertRecord", ctx, mock.AnythingOfType("domain.IdempotencyRecord")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindRecord", ctx, key, "shipment.create").Return(&domain.IdempotencyRecord{
		Key:    key,
		Scope:  "shipment.create",
		Status: domain.IdempotencyInProgress,
	}, nil).Once()
	// A fresh record cannot be taken over.
	suite.mockRepo.On("TakeOverStale", ctx, key, "shipment.create", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(false, nil).Once()

	_, _, err := suite.service.Execute(ctx, key, "shipment.create", func(ctx context.Context) (json.RawMessage, error) {
		suite.FailNow("function must not run while another attempt is live")
		return nil, nil
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIdempotencyInProgress)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_TakesOverStaleInProgress() {
	ctx := context.Background()
	key := uuid.NewString()
	expected := json.RawMessage(`{"recovered":true}`)

	suite.mockRepo.On("InsertRecord", ctx, mock.AnythingOfType("domain.IdempotencyRecord")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindRecord", ctx, key, "shipment.create").Return(&domain.IdempotencyRecord{
		Key:           key,
		Scope:         "shipment.create",
		Status:        domain.IdempotencyInProgress,
		LastUpdatedAt: time.Now().Add(-time.Hour),
	}, nil).Once()
	suite.mockRepo.On("TakeOverStale", ctx, key, "shipment.create", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
	suite.mockRepo.On("MarkCompleted", ctx, key, "shipment.create", expected, mock.AnythingOfType("time.Time")).Return(nil).Once()

	payload, replayed, err := suite.service.Execute(ctx, key, "shipment.create", func(ctx context.Context) (json.RawMessage, error) {
		return expected, nil
	})

	suite.Require().NoError(err)
	suite.False(replayed)
	suite.JSONEq(string(expected), string(payload))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *IdempotencyServiceTestSuite) TestExecute_MarksFailedOnError() {
	ctx := context.Background()
	key := uuid.NewString()
	fnErr := assert.AnError

	suite.mockRepo.On("InsertRecord", ctx, mock.AnythingOfType("domain.IdempotencyRecord")).Return(nil).Once()
	suite.mockRepo.On("MarkFailed", ctx, key, "shipment.create", fnErr.Error(), mock.AnythingOfType("time.Time")).Return(nil).Once()

	payload, _, err := suite.service.Execute(ctx, key, "shipment.create", func(ctx context.Context) (json.RawMessage, error) {
		return nil, fnErr
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, fnErr)
	suite.Nil(payload)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockRepo.AssertNotCalled(suite.T(), "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IdempotencyServiceTestSuite) TestExecute_ReturnsOutcomeWhenCompletionMarkFails() {
	ctx := context.Background()
	key := uuid.NewString()
	expected := json.RawMessage(`{"ok":true}`)

	suite.mockRepo.On("InsertRecord", ctx, mock.AnythingOfType("domain.IdempotencyRecord")).Return(nil).Once()
	suite.mockRepo.On("MarkCompleted", ctx, key, "shipment.create", expected, mock.AnythingOfType("time.Time")).
		Return(assert.AnError).Once()

	payload, _, err := suite.service.Execute(ctx, key, "shipment.create", func(ctx context.Context) (json.RawMessage, error) {
		return expected, nil
	})

	// The side effects already happened; the outcome wins over the bookkeeping error.
	suite.Require().NoError(err)
	suite.JSONEq(string(expected), string(payload))
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestIdempotencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IdempotencyServiceTestSuite))
}
