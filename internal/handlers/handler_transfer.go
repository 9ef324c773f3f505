package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/dto"
	"github.com/courierly/wallet-backend/internal/middleware"
	"github.com/courierly/wallet-backend/internal/utils"
)

// transferHandler handles HTTP requests for reseller credit transfers.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{transferService: ts}
}

// registerTransferRoutes registers routes related to credit transfers.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)
	rg.POST("/transfers", h.createTransfer)
}

// createTransfer executes an atomic credit transfer between a reseller
// account and an account in its subtree.
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	callerUserID, ok := callerID(c)
	if !ok {
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		idempotencyKey = utils.DeriveIdempotencyKey(time.Now().UTC(),
			callerUserID, req.FromAccountID, req.ToAccountID, req.Amount.String())
	}

	res, err := h.transferService.Transfer(c.Request.Context(), callerUserID, req, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if res.IdempotentReplay {
		status = http.StatusOK
	}
	c.JSON(status, res)
}
