package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the gateway at its public path. The endpoint
// predates the /api/v1 grouping and clients depend on the exact URL.
func (h *Handler) RegisterRoutes(r gin.IRouter, perMinute int) {
	r.POST("/api/analyze-video", RateLimit(perMinute), h.AnalyzeVideo)
}
