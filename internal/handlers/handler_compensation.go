package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
)

// compensationHandler exposes read access to compensation tasks for support
// tooling.
type compensationHandler struct {
	compensationService portssvc.CompensationSvcFacade
}

func newCompensationHandler(cs portssvc.CompensationSvcFacade) *compensationHandler {
	return &compensationHandler{compensationService: cs}
}

// registerCompensationRoutes registers routes related to compensation tasks.
func registerCompensationRoutes(rg *gin.RouterGroup, compensationService portssvc.CompensationSvcFacade) {
	h := newCompensationHandler(compensationService)
	rg.GET("/compensation-tasks/:id", h.getTask)
}

func (h *compensationHandler) getTask(c *gin.Context) {
	task, err := h.compensationService.GetTaskByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
