package handlers

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
	"maintledger/internal/domain"
	"maintledger/internal/infrastructure/http/v1/dto"
)

// RecordHandler reads and replaces whole records kept by a domain.Repository.
// Work orders, projects and assets are edited elsewhere and pushed here.
type RecordHandler[T domain.Record[T]] struct {
	*BaseHandler
	repo *domain.Repository[T]
}

// NewRecordHandler creates a handler over repo.
func NewRecordHandler[T domain.Record[T]](base *BaseHandler, repo *domain.Repository[T]) *RecordHandler[T] {
	return &RecordHandler[T]{BaseHandler: base, repo: repo}
}

// List handles GET /<records>
func (h *RecordHandler[T]) List(c *gin.Context) {
	h.OK(c, dto.NewListResponse(h.repo.All(c.Request.Context())))
}

// Get handles GET /<records>/:id
func (h *RecordHandler[T]) Get(c *gin.Context) {
	rec, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Put handles PUT /<records>/:id
func (h *RecordHandler[T]) Put(c *gin.Context) {
	ctx := c.Request.Context()

	var rec T
	if !h.BindJSON(c, &rec) {
		return
	}
	if isNil(rec) || rec.GetID() != c.Param("id") {
		h.Error(c, apperror.NewValidation("body id must match path id").WithDetail("id", c.Param("id")))
		return
	}
	if v, ok := any(rec).(entity.Validatable); ok {
		if err := v.Validate(ctx); err != nil {
			h.Error(c, err)
			return
		}
	}

	Mutation(h.BaseHandler, c, http.StatusOK, rec, h.repo.Save(ctx, rec))
}

// Delete handles DELETE /<records>/:id
func (h *RecordHandler[T]) Delete(c *gin.Context) {
	recordID := c.Param("id")
	if !h.repo.Exists(recordID) {
		h.Error(c, apperror.NewNotFound(h.repo.EntityName(), recordID))
		return
	}
	Mutation(h.BaseHandler, c, http.StatusOK, gin.H{"id": recordID}, h.repo.Delete(c.Request.Context(), recordID))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
