package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/oksam-app/eco-todo-backend/internal/auth"
)

// RateLimit caps model calls per user. Each scan is an expensive
// upstream round trip, so the limiter sits in front of the handler
// rather than inside it. Keyed by uid, falling back to client IP for
// unauthenticated callers.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 6
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
			limiters[key] = l
		}
		return l
	}

	return func(c *gin.Context) {
		key := auth.UserUID(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !get(key).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many analysis requests, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
