// Package api provides HTTP handlers for the sentiment analysis service.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
)

// Runner defines the pipeline operation needed by the analyze handler.
type Runner interface {
	Run(ctx context.Context, videoID string) (*domain.RunResult, error)
}

// AnalyzeHandler triggers pipeline runs over HTTP.
type AnalyzeHandler struct {
	runner Runner
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(runner Runner) *AnalyzeHandler {
	return &AnalyzeHandler{runner: runner}
}

// Analyze handles POST /api/v1/analyze?videoId=<id>. The run executes
// synchronously; failure responses still carry the last committed aggregate
// when one exists.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	videoID := c.Query("videoId")
	if videoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "videoId query parameter is required"})
		return
	}

	result, runErr := h.runner.Run(c.Request.Context(), videoID)
	if runErr != nil {
		h.writeRunError(c, result, runErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyzeHandler) writeRunError(c *gin.Context, result *domain.RunResult, runErr error) {
	body := gin.H{"error": runErr.Error()}

	if result != nil {
		body["status"] = result.Status
		if result.Aggregate != nil {
			body["aggregate"] = result.Aggregate
		}
		if len(result.Skipped) > 0 {
			body["skipped"] = result.Skipped
		}
	}

	switch {
	case errors.Is(runErr, domain.ErrInvalidVideoID):
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(runErr, domain.ErrRunInProgress):
		c.JSON(http.StatusConflict, body)
	case errors.Is(runErr, domain.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, body)
	case errors.Is(runErr, domain.ErrTransientFetch), errors.Is(runErr, domain.ErrClassification):
		c.JSON(http.StatusBadGateway, body)
	default:
		c.JSON(http.StatusInternalServerError, body)
	}
}
