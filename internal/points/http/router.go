package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/points", h.GetPoints)
	rg.GET("/points/history", h.GetHistory)
	rg.POST("/points/earn", h.EarnPoints)
	rg.POST("/points/session/reset", h.ResetSession)
}
