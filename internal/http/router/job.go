package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wayfarerhq/wayfarer/internal/http/handler"
)

// JobRouter sets up the itinerary job routes. They live at the root of the
// API surface rather than under a versioned group.
func JobRouter(rg *gin.RouterGroup, h *handler.JobHandler) {
	rg.POST("/generate-itinerary", h.Generate)
	rg.GET("/job-status/:jobId", h.Status)
	rg.GET("/jobs", h.List)
}
