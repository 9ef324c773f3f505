package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/middleware"
)

// respondError maps service errors onto HTTP statuses. The retryable flag
// tells API clients whether resubmitting the same request (same idempotency
// key) can possibly succeed.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, apperrors.ErrSelfTransfer):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, apperrors.ErrOwnershipViolation):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperrors.ErrDuplicate):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrIdempotencyInProgress):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrUpstream):
		status = http.StatusBadGateway
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{
		"error":     message,
		"retryable": apperrors.IsRetryable(err),
	})
}

// callerID pulls the authenticated caller from the request context. The
// identity middleware guarantees presence on /api/v1 routes.
func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetCallerIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return "", false
	}
	return id, true
}
