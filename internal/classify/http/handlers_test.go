package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksam-app/eco-todo-backend/internal/classify/service"
)

type fakeModel struct {
	enabled bool
	reply   string
	calls   int
}

func (m *fakeModel) Enabled() bool { return m.enabled }

func (m *fakeModel) GenerateContent(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	m.calls++
	return m.reply, nil
}

const validReply = `{"productName":"Bottle","description":"A plastic water bottle","material":"plastic","pointsForCorrect":10,"question":"How should you recycle this bottle?","options":["a","b","c","d"],"correctAnswers":{"best":"a","easy":"b"}}`

func setupRouter(model *fakeModel) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(service.NewClassifier(model, 0))
	h.RegisterRoutes(r, 100)
	return r
}

func postAnalyze(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-video", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeVideoEndpoint(t *testing.T) {
	video := base64.StdEncoding.EncodeToString([]byte("clip bytes"))

	t.Run("missing video is a 400 and the model is idle", func(t *testing.T) {
		model := &fakeModel{enabled: true, reply: validReply}
		w := postAnalyze(setupRouter(model), `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Video data is required"}`, w.Body.String())
		assert.Zero(t, model.calls)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		model := &fakeModel{enabled: true, reply: validReply}
		w := postAnalyze(setupRouter(model), `not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, model.calls)
	})

	t.Run("successful analysis", func(t *testing.T) {
		model := &fakeModel{enabled: true, reply: "Here you go: " + validReply}
		w := postAnalyze(setupRouter(model), `{"video":"`+video+`"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Analysis struct {
				ProductName      string   `json:"productName"`
				PointsForCorrect int      `json:"pointsForCorrect"`
				Options          []string `json:"options"`
			} `json:"analysis"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Bottle", resp.Analysis.ProductName)
		assert.Equal(t, 10, resp.Analysis.PointsForCorrect)
		assert.Len(t, resp.Analysis.Options, 4)
		assert.Equal(t, 1, model.calls)
	})

	t.Run("reply without JSON is a 500 with details", func(t *testing.T) {
		model := &fakeModel{enabled: true, reply: "no object here"}
		w := postAnalyze(setupRouter(model), `{"video":"`+video+`"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Model returned an invalid response format", resp["error"])
		assert.NotEmpty(t, resp["details"])
	})

	t.Run("disabled gateway is a 503", func(t *testing.T) {
		model := &fakeModel{enabled: false}
		w := postAnalyze(setupRouter(model), `{"video":"`+video+`"}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Video analysis is not configured", resp["error"])
		assert.NotContains(t, resp, "details")
	})

	t.Run("invalid base64 is a 400", func(t *testing.T) {
		model := &fakeModel{enabled: true, reply: validReply}
		w := postAnalyze(setupRouter(model), `{"video":"!!!"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, model.calls)
	})
}

func TestAnalyzeVideoRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	model := &fakeModel{enabled: true, reply: validReply}
	r := gin.New()
	h := New(service.NewClassifier(model, 0))
	h.RegisterRoutes(r, 2)

	video := base64.StdEncoding.EncodeToString([]byte("clip"))
	var last int
	for i := 0; i < 3; i++ {
		w := postAnalyze(r, `{"video":"`+video+`"}`)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
	assert.Equal(t, 2, model.calls)
}
