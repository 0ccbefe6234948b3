package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksam-app/eco-todo-backend/internal/auth"
	"github.com/oksam-app/eco-todo-backend/internal/leaderboard/service"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetLeaderboard returns the current ranking. A store failure yields
// an explicit 503 error body, never a silently empty board.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	board, err := h.svc.Compute(c.Request.Context(), auth.UserUID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, board)
}

// GetUserCount returns the live registered-user count.
func (h *Handler) GetUserCount(c *gin.Context) {
	n, err := h.svc.CountUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalUsers": n})
}
