package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintledger/internal/domain/costing"
	"maintledger/internal/domain/worktime"
	"maintledger/internal/infrastructure/http/v1/dto"
)

// WorkOrderHandler serves work order costs, hours and executor transitions.
type WorkOrderHandler struct {
	*BaseHandler
	costs *costing.Service
	time  *worktime.Service
}

// NewWorkOrderHandler creates a new work order handler.
func NewWorkOrderHandler(base *BaseHandler, costs *costing.Service, time *worktime.Service) *WorkOrderHandler {
	return &WorkOrderHandler{BaseHandler: base, costs: costs, time: time}
}

// Cost handles GET /work-orders/:id/cost
func (h *WorkOrderHandler) Cost(c *gin.Context) {
	cost, err := h.costs.WorkOrderCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cost)
}

// Hours handles GET /work-orders/:id/hours
func (h *WorkOrderHandler) Hours(c *gin.Context) {
	hours, err := h.time.Hours(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, hours)
}

// Transition returns the handler for POST /work-orders/:id/executors/:executorId/<action>.
func (h *WorkOrderHandler) Transition(action worktime.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.TransitionRequest
		if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
			return
		}

		st, ack, err := h.time.Transition(c.Request.Context(), c.Param("id"), c.Param("executorId"), action, req.Reason)
		if err != nil {
			h.Error(c, err)
			return
		}
		Mutation(h.BaseHandler, c, http.StatusOK, st, ack)
	}
}
