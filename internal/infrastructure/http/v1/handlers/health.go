// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inventario/internal/domain/session"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	gw      session.Gateway
	version string
	started time.Time
}

// NewHealthHandler creates a health handler. gw may be nil; readiness then
// only reports process health.
func NewHealthHandler(gw session.Gateway, version string) *HealthHandler {
	return &HealthHandler{gw: gw, version: version, started: time.Now()}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the upstream inventory server answers. The probe
// uses a short deadline on purpose; a stalled upstream should flip
// readiness quickly, not after the full client timeout.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.gw == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.gw.FetchSession(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Info reports build and uptime information.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
	})
}
