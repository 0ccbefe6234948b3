package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/leaderboard", h.GetLeaderboard)
	rg.GET("/leaderboard/stream", h.StreamLeaderboard)
	rg.GET("/stats/users", h.GetUserCount)
	rg.GET("/stats/users/stream", h.StreamUserCount)
}
