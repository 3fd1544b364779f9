package api

import (
	"github.com/gin-gonic/gin"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/telemetry"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, analyzeHandler *AnalyzeHandler, aggregateHandler *AggregateHandler) {
	v1 := router.Group("/api/v1")

	v1.POST("/analyze", analyzeHandler.Analyze)
	v1.GET("/videos/:videoId/aggregate", aggregateHandler.GetAggregate)

	router.GET("/metrics", gin.WrapH(telemetry.Handler()))
}
