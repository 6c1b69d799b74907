package handlers

import (
	"github.com/gin-gonic/gin"

	"maintledger/internal/domain/costing"
)

// ProjectHandler serves project cost rollups.
type ProjectHandler struct {
	*BaseHandler
	costs *costing.Service
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(base *BaseHandler, costs *costing.Service) *ProjectHandler {
	return &ProjectHandler{BaseHandler: base, costs: costs}
}

// Cost handles GET /projects/:id/cost
func (h *ProjectHandler) Cost(c *gin.Context) {
	cost, err := h.costs.ProjectCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cost)
}

// PlannedVsActual handles GET /projects/:id/planned-vs-actual
func (h *ProjectHandler) PlannedVsActual(c *gin.Context) {
	report, err := h.costs.PlannedVsActual(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
