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

// shipmentHandler handles HTTP requests for the shipment lifecycle.
type shipmentHandler struct {
	shipmentService portssvc.ShipmentSvcFacade
}

func newShipmentHandler(ss portssvc.ShipmentSvcFacade) *shipmentHandler {
	return &shipmentHandler{shipmentService: ss}
}

// registerShipmentRoutes registers routes related to shipments.
func registerShipmentRoutes(rg *gin.RouterGroup, shipmentService portssvc.ShipmentSvcFacade) {
	h := newShipmentHandler(shipmentService)

	shipments := rg.Group("/shipments")
	{
		shipments.POST("", h.createShipment)
		shipments.GET("/:id", h.getShipment)
		shipments.POST("/:id/cancel", h.cancelShipment)
	}
}

// createShipment runs the shipment creation saga. Clients should pass an
// Idempotency-Key header; without one a key is derived from the request
// contents so an immediate double submit still collapses onto one attempt.
func (h *shipmentHandler) createShipment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateShipment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		idempotencyKey = utils.DeriveIdempotencyKey(time.Now().UTC(),
			userID, req.AccountID,
			req.Details.WeightKg.String(), req.Details.DestinationZone, req.Details.ServiceLevel)
	}

	res, err := h.shipmentService.CreateShipment(c.Request.Context(), userID, req, idempotencyKey)
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

// getShipment retrieves a shipment owned by the caller.
func (h *shipmentHandler) getShipment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	res, err := h.shipmentService.GetShipmentByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// cancelShipment cancels a booked shipment and refunds its cost.
func (h *shipmentHandler) cancelShipment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	res, err := h.shipmentService.CancelShipment(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
