package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
)

// AggregateReader defines the read operation needed by the handler.
type AggregateReader interface {
	GetAggregate(ctx context.Context, videoID string) (*domain.Aggregate, error)
}

// AggregateHandler serves stored per-video sentiment aggregates.
type AggregateHandler struct {
	reader AggregateReader
}

// NewAggregateHandler creates a new aggregate handler.
func NewAggregateHandler(reader AggregateReader) *AggregateHandler {
	return &AggregateHandler{reader: reader}
}

// GetAggregate handles GET /api/v1/videos/:videoId/aggregate.
func (h *AggregateHandler) GetAggregate(c *gin.Context) {
	videoID := c.Param("videoId")

	agg, getErr := h.reader.GetAggregate(c.Request.Context(), videoID)
	if getErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": getErr.Error()})
		return
	}

	if agg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no aggregate for video " + videoID})
		return
	}

	c.JSON(http.StatusOK, agg)
}
