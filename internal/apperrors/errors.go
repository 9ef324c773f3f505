package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates a debit would take an account balance below zero.
// The ledger rejects the operation before any write happens.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrSelfTransfer indicates a transfer where source and destination are the same account.
var ErrSelfTransfer = errors.New("cannot transfer to the same account")

// ErrOwnershipViolation indicates the caller is not an ancestor/owner of the target account.
var ErrOwnershipViolation = errors.New("caller does not own target account")

// ErrIdempotencyInProgress indicates another attempt with the same idempotency key
// is currently executing and has not gone stale yet.
var ErrIdempotencyInProgress = errors.New("operation with this idempotency key is in progress")

// ErrUpstream indicates a courier (or other upstream) failure, including timeouts.
// Callers may retry with the same idempotency key.
var ErrUpstream = errors.New("upstream service failure")

// AppError wraps a lower-level error with an HTTP-ish status code and a message.
// Used mainly at the repository layer for persistence failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsRetryable reports whether the caller may safely retry the failed operation
// with the same idempotency key. Only upstream and persistence failures qualify;
// validation and insufficient-funds errors require changed input.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrOwnershipViolation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrDuplicate):
		return false
	}
	return true
}
