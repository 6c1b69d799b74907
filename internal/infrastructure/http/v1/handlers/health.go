// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	store   Pinger
	pending func() int
}

// NewHealthHandler creates a health handler. store is nil when records are
// kept in memory only.
func NewHealthHandler(store Pinger, pending func() int) *HealthHandler {
	return &HealthHandler{store: store, pending: pending}
}

// Live handles liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness probe.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]any{"store": "memory"}
	if h.pending != nil {
		checks["pending_writes"] = h.pending()
	}

	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			checks["store"] = "unhealthy: " + err.Error()
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "checks": checks})
			return
		}
		checks["store"] = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
