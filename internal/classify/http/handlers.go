package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksam-app/eco-todo-backend/internal/classify/domain"
	"github.com/oksam-app/eco-todo-backend/internal/classify/service"
)

type Handler struct {
	classifier *service.Classifier
}

func New(classifier *service.Classifier) *Handler {
	return &Handler{classifier: classifier}
}

type analyzeRequest struct {
	Video string `json:"video"`
}

// AnalyzeVideo accepts a base64 video clip, forwards it to the model
// and returns the structured classification. The model is never called
// for an empty payload.
func (h *Handler) AnalyzeVideo(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Video == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video data is required"})
		return
	}

	result, err := h.classifier.AnalyzeVideo(c.Request.Context(), req.Video)
	if err != nil {
		status, msg := classifyError(err)
		body := gin.H{"error": msg}
		if status == http.StatusInternalServerError {
			body["details"] = err.Error()
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": result})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyVideo):
		return http.StatusBadRequest, "Video data is required"
	case errors.Is(err, domain.ErrBadEncoding):
		return http.StatusBadRequest, "Video data is not valid base64"
	case errors.Is(err, domain.ErrVideoTooLarge):
		return http.StatusRequestEntityTooLarge, "Video payload too large"
	case errors.Is(err, domain.ErrGatewayDisabled):
		return http.StatusServiceUnavailable, "Video analysis is not configured"
	case errors.Is(err, domain.ErrModelTimeout):
		return http.StatusInternalServerError, "Analysis timed out"
	case errors.Is(err, domain.ErrNoClassification), errors.Is(err, domain.ErrInvalidResult):
		return http.StatusInternalServerError, "Model returned an invalid response format"
	default:
		return http.StatusInternalServerError, "Failed to analyze video"
	}
}
