package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksam-app/eco-todo-backend/internal/auth"
	"github.com/oksam-app/eco-todo-backend/internal/leaderboard/service"
	pointsdomain "github.com/oksam-app/eco-todo-backend/internal/points/domain"
	"github.com/oksam-app/eco-todo-backend/internal/points/repository"
)

func setupRouter(t *testing.T, uid string) (*gin.Engine, *repository.StoreRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := repository.NewStoreRepo(client)

	r := gin.New()
	grp := r.Group("/api/v1")
	if uid != "" {
		grp.Use(func(c *gin.Context) { c.Set(auth.CtxFirebaseUID, uid) })
	}
	New(service.NewService(store)).Register(grp)
	return r, store
}

func brokenRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	r := gin.New()
	grp := r.Group("/api/v1")
	New(service.NewService(repository.NewStoreRepo(client))).Register(grp)
	return r
}

func seed(t *testing.T, store *repository.StoreRepo, uid string, points int) {
	t.Helper()
	ctx := context.Background()
	_, err := store.EnsureRecord(ctx, uid, uid+"@example.com", "")
	require.NoError(t, err)
	if points > 0 {
		_, err = store.AppendEntry(ctx, uid, pointsdomain.HistoryEntry{
			ID: uid + "-e1", Points: points, Timestamp: time.Now().UnixMilli(),
		})
		require.NoError(t, err)
	}
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetLeaderboard(t *testing.T) {
	t.Run("ranked board with current user marked", func(t *testing.T) {
		r, store := setupRouter(t, "me")
		seed(t, store, "me", 10)
		seed(t, store, "rival", 20)

		w := get(r, "/api/v1/leaderboard")
		require.Equal(t, http.StatusOK, w.Code)

		var board struct {
			Entries []struct {
				Rank        int    `json:"rank"`
				UID         string `json:"uid"`
				DisplayName string `json:"displayName"`
				TotalPoints int    `json:"totalPoints"`
				You         bool   `json:"you"`
			} `json:"entries"`
			TotalUsers int64 `json:"totalUsers"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
		require.Len(t, board.Entries, 2)
		assert.Equal(t, "rival", board.Entries[0].UID)
		assert.False(t, board.Entries[0].You)
		assert.Equal(t, "me", board.Entries[1].UID)
		assert.True(t, board.Entries[1].You)
		assert.Equal(t, int64(2), board.TotalUsers)
	})

	t.Run("store failure is an explicit 503", func(t *testing.T) {
		r := brokenRouter(t)
		w := get(r, "/api/v1/leaderboard")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "leaderboard unavailable", resp["error"])
		assert.NotEmpty(t, resp["details"])
	})
}

func TestGetUserCount(t *testing.T) {
	r, store := setupRouter(t, "")
	seed(t, store, "u1", 10)
	seed(t, store, "u2", 0)

	w := get(r, "/api/v1/stats/users")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalUsers":2}`, w.Body.String())
}
