package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksam-app/eco-todo-backend/internal/auth"
)

const heartbeatInterval = 15 * time.Second

// StreamLeaderboard pushes live ranking updates over Server-Sent
// Events. An initial snapshot is sent immediately; every ledger write
// triggers a recompute and an update event. The store subscription is
// released when the client disconnects.
func (h *Handler) StreamLeaderboard(c *gin.Context) {
	currentUID := auth.UserUID(c)

	sub, err := h.svc.Watch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable", "details": err.Error()})
		return
	}
	defer sub.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	setSSEHeaders(c)

	board, err := h.svc.Compute(c.Request.Context(), currentUID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable", "details": err.Error()})
		return
	}
	sendEvent(c, flusher, "initial", board)

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-sub.C:
			if !open {
				return
			}
			board, err := h.svc.Compute(ctx, currentUID)
			if err != nil {
				sendEvent(c, flusher, "error", gin.H{"error": "leaderboard unavailable"})
				return
			}
			sendEvent(c, flusher, "update", board)
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// StreamUserCount pushes live registered-user counts over SSE.
func (h *Handler) StreamUserCount(c *gin.Context) {
	sub, err := h.svc.Watch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable", "details": err.Error()})
		return
	}
	defer sub.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	setSSEHeaders(c)

	ctx := c.Request.Context()
	n, err := h.svc.CountUsers(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats unavailable", "details": err.Error()})
		return
	}
	sendEvent(c, flusher, "initial", gin.H{"totalUsers": n})

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-sub.C:
			if !open {
				return
			}
			n, err := h.svc.CountUsers(ctx)
			if err != nil {
				sendEvent(c, flusher, "error", gin.H{"error": "stats unavailable"})
				return
			}
			sendEvent(c, flusher, "update", gin.H{"totalUsers": n})
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
}

func sendEvent(c *gin.Context, flusher http.Flusher, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
