package bootstrap

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/api"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/httpserver"
)

const healthCheckTimeout = 2 * time.Second

// SetupHTTPServer creates the HTTP server with all handlers wired.
func SetupHTTPServer(app *App) *httpserver.Server {
	analyzeHandler := api.NewAnalyzeHandler(app.Orchestrator)
	aggregateHandler := api.NewAggregateHandler(app.Store)

	checks := map[string]httpserver.HealthChecker{
		"database": httpserver.PingHealthChecker("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()

			return app.Store.Ping(ctx)
		}),
	}

	if app.Redis != nil {
		checks["redis"] = httpserver.PingHealthChecker("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()

			return app.Redis.Ping(ctx).Err()
		})
	}

	return httpserver.New(&httpserver.Config{
		Port:           app.Config.Service.Port,
		Debug:          app.Config.Service.Debug,
		ServiceName:    app.Config.Service.Name,
		ServiceVersion: app.Config.Service.Version,
	}, app.Logger, checks, func(router *gin.Engine) {
		api.SetupRoutes(router, analyzeHandler, aggregateHandler)
	})
}
