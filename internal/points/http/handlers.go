package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksam-app/eco-todo-backend/internal/auth"
	"github.com/oksam-app/eco-todo-backend/internal/points/domain"
	"github.com/oksam-app/eco-todo-backend/internal/points/service"
)

type Handler struct {
	ledger *service.Ledger
}

func New(ledger *service.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// GetPoints returns the caller's lifetime total and session counter.
func (h *Handler) GetPoints(c *gin.Context) {
	uid := auth.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	res, err := h.ledger.Load(c.Request.Context(), uid, auth.UserEmail(c), "")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "points unavailable", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, pointsResponse{
		TotalPoints:   res.Record.TotalPoints,
		SessionPoints: h.ledger.SessionPoints(uid),
		LastUpdated:   res.Record.LastUpdated,
		Fallback:      res.Fallback,
	})
}

// GetHistory returns the caller's point-earning events, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	uid := auth.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	entries, fallback, err := h.ledger.History(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history unavailable", "details": err.Error()})
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	c.JSON(http.StatusOK, historyResponse{History: entries, Fallback: fallback})
}

// EarnPoints appends one point-earning event for the caller.
func (h *Handler) EarnPoints(c *gin.Context) {
	uid := auth.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req earnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.ledger.AddPoints(c.Request.Context(), uid, auth.UserEmail(c), req.Points, req.Reason)
	if err != nil {
		if err == domain.ErrInvalidPoints {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record points", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

// ResetSession zeroes the caller's points-this-visit counter.
func (h *Handler) ResetSession(c *gin.Context) {
	uid := auth.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	h.ledger.ResetSessionPoints(uid)
	c.JSON(http.StatusOK, gin.H{"sessionPoints": 0})
}
