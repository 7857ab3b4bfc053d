package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports liveness together with renderer statistics
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"renderer": h.renderer.Stats(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}

	c.JSON(http.StatusOK, body)
}
