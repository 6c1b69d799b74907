package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintledger/internal/domain/ledger"
	"maintledger/internal/infrastructure/http/v1/dto"
)

// MaterialHandler exposes the stock ledger.
type MaterialHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewMaterialHandler creates a new material handler.
func NewMaterialHandler(base *BaseHandler, service *ledger.Service) *MaterialHandler {
	return &MaterialHandler{BaseHandler: base, service: service}
}

// List handles GET /materials
func (h *MaterialHandler) List(c *gin.Context) {
	h.OK(c, dto.NewListResponse(h.service.ListMaterials(c.Request.Context())))
}

// Get handles GET /materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	m, err := h.service.GetMaterial(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// LowStock handles GET /materials/low-stock
func (h *MaterialHandler) LowStock(c *gin.Context) {
	h.OK(c, dto.NewListResponse(h.service.LowStock(c.Request.Context())))
}

// Register handles POST /materials
func (h *MaterialHandler) Register(c *gin.Context) {
	var req dto.RegisterMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusCreated)(h.service.Register(c.Request.Context(), req.ToEntity()))
}

// AddLocation handles POST /materials/:id/locations
func (h *MaterialHandler) AddLocation(c *gin.Context) {
	var req dto.AddLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusOK)(h.service.AddLocation(c.Request.Context(), c.Param("id"), req.Name, req.InitialQuantity))
}

// Inbound handles POST /materials/:id/inbound
func (h *MaterialHandler) Inbound(c *gin.Context) {
	var req dto.InboundRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusOK)(h.service.Inbound(c.Request.Context(), c.Param("id"), req.Location, req.Quantity, req.Reason))
}

// Outbound handles POST /materials/:id/outbound
func (h *MaterialHandler) Outbound(c *gin.Context) {
	var req dto.OutboundRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusOK)(h.service.Outbound(c.Request.Context(), c.Param("id"), req.Location, req.Quantity, req.ToUsage()))
}

// Transfer handles POST /materials/:id/transfer
func (h *MaterialHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusOK)(h.service.Transfer(c.Request.Context(), c.Param("id"), req.From, req.To, req.Quantity))
}

// Consume handles POST /materials/:id/consume (FIFO across locations).
func (h *MaterialHandler) Consume(c *gin.Context) {
	var req dto.ConsumeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c, http.StatusOK)(h.service.Consume(c.Request.Context(), c.Param("id"), req.Quantity, req.ToUsage()))
}

// Kardex handles GET /materials/:id/kardex
func (h *MaterialHandler) Kardex(c *gin.Context) {
	var q dto.KardexQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.service.Kardex(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(entries))
}

// Turnover handles GET /materials/:id/turnover
func (h *MaterialHandler) Turnover(c *gin.Context) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return
	}
	t, err := h.service.Turnover(c.Request.Context(), c.Param("id"), q.From, q.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Verify handles GET /materials/:id/verify
func (h *MaterialHandler) Verify(c *gin.Context) {
	v, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"ok": v.OK(), "verification": v})
}

func (h *MaterialHandler) respond(c *gin.Context, status int) func(ledger.Result, error) {
	return func(res ledger.Result, err error) {
		if err != nil {
			h.Error(c, err)
			return
		}
		Mutation(h.BaseHandler, c, status, res, res.Ack)
	}
}
