// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"maintledger/internal/core/security"
	"maintledger/internal/domain"
	"maintledger/internal/infrastructure/http/v1/handlers"
	"maintledger/internal/infrastructure/http/v1/middleware"
)

// RegisterRecordRoutes registers read and replace routes for an externally
// edited record type. Reads need readPerm, writes need writePerm.
//
// Usage:
//
//	handler := handlers.NewRecordHandler(base, cfg.WorkOrders)
//	RegisterRecordRoutes(api.Group("/work-orders"), handler, security.PermCostRead, security.PermStockWrite)
func RegisterRecordRoutes[T domain.Record[T]](group *gin.RouterGroup, handler *handlers.RecordHandler[T], readPerm, writePerm security.Permission) {
	group.GET("", middleware.RequirePermission(readPerm), handler.List)
	group.GET("/:id", middleware.RequirePermission(readPerm), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(writePerm), handler.Put)
	group.DELETE("/:id", middleware.RequirePermission(writePerm), handler.Delete)
}
