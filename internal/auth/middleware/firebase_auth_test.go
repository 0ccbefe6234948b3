package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksam-app/eco-todo-backend/internal/auth"
)

func TestRequireUserDevFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func() (*gin.Engine, *struct{ uid, email string }) {
		seen := &struct{ uid, email string }{}
		r := gin.New()
		r.Use(RequireUser(nil))
		r.GET("/whoami", func(c *gin.Context) {
			seen.uid = auth.UserUID(c)
			seen.email = auth.UserEmail(c)
			c.Status(http.StatusOK)
		})
		return r, seen
	}

	t.Run("header identity", func(t *testing.T) {
		r, seen := newRouter()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-User-Id", "u1")
		req.Header.Set("X-User-Email", "u1@example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1", seen.uid)
		assert.Equal(t, "u1@example.com", seen.email)
	})

	t.Run("defaults to the demo identity", func(t *testing.T) {
		r, seen := newRouter()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "demo-user", seen.uid)
	})
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mk := func(header string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		return c
	}

	assert.Equal(t, "abc123", extractToken(mk("Bearer abc123")))
	assert.Empty(t, extractToken(mk("")))
	assert.Empty(t, extractToken(mk("Bearer ")))
	assert.Empty(t, extractToken(mk("Basic abc123")))
}
