package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/persist"
	"maintledger/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the gin context and aborts the request.
// The JSON body is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Mutation answers a state-changing request. With ?wait=true it blocks on
// ack and reports a persistence failure as an error; otherwise it returns
// at once with persistence "pending".
func Mutation[T any](h *BaseHandler, c *gin.Context, status int, data T, ack *persist.Ack) {
	resp := dto.MutationResponse[T]{Data: data, Persistence: dto.PersistencePending}

	if ack != nil && c.Query("wait") == "true" {
		if err := ack.Wait(c.Request.Context()); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				err = apperror.NewDatabase(err)
			}
			h.Error(c, err)
			return
		}
		resp.Persistence = dto.PersistenceCommitted
	}

	c.JSON(status, resp)
}
