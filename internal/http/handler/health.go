package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wayfarerhq/wayfarer/internal/store"
)

type HealthHandler struct {
	pinger  store.Pinger
	version string
}

func NewHealthHandler(pinger store.Pinger, version string) *HealthHandler {
	return &HealthHandler{
		pinger:  pinger,
		version: version,
	}
}

// Check reports process liveness and document store reachability. It never
// touches the generation model.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.pinger.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check failed, store unreachable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root describes the service and its endpoints.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Wayfarer Itinerary Generator API",
		"version": h.version,
		"endpoints": gin.H{
			"generate_itinerary": "POST /generate-itinerary",
			"job_status":         "GET /job-status/{jobId}",
			"jobs":               "GET /jobs",
			"health":             "GET /health",
		},
	})
}
