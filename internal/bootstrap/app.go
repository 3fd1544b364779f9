// Package bootstrap handles application initialization and lifecycle
// management for the sentiment analysis service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/classifier"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/config"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/domain"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/pipeline"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/source"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/store"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/telemetry"
)

// App holds the wired service components.
type App struct {
	Config       *config.Config
	Logger       logger.Logger
	DB           *sqlx.DB
	Redis        *redis.Client
	Store        *store.Store
	Orchestrator *pipeline.Orchestrator
	Metrics      *telemetry.Metrics
}

// NewApp wires every component from configuration. Metrics register on the
// given registerer; one-shot commands pass a throwaway registry.
func NewApp(configPath string, registerer prometheus.Registerer) (*App, error) {
	cfg, cfgErr := LoadConfig(configPath)
	if cfgErr != nil {
		return nil, fmt.Errorf("config: %w", cfgErr)
	}

	log, logErr := CreateLogger(cfg)
	if logErr != nil {
		return nil, fmt.Errorf("logger: %w", logErr)
	}

	db, dbErr := SetupDatabase(cfg)
	if dbErr != nil {
		return nil, fmt.Errorf("database: %w", dbErr)
	}

	redisClient, redisErr := SetupRedis(cfg)
	if redisErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis: %w", redisErr)
	}

	var cache *store.VerdictCache
	if redisClient != nil {
		cache = store.NewVerdictCache(redisClient, cfg.Redis.VerdictTTL, log)
	}

	st := store.New(db, cache, log)

	cls, clsErr := classifier.New(cfg.Classifier, log)
	if clsErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("classifier: %w", clsErr)
	}

	src := source.NewYouTubeClient(source.Config{
		APIKey:   cfg.YouTube.APIKey,
		BaseURL:  cfg.YouTube.BaseURL,
		PageSize: cfg.YouTube.PageSize,
		RPS:      cfg.YouTube.RPS,
		Burst:    cfg.YouTube.Burst,
		Timeout:  cfg.YouTube.Timeout,
	}, log)

	metrics := telemetry.New(registerer)

	orch := pipeline.New(src, cls, st, pipeline.Options{
		Concurrency: cfg.Pipeline.Concurrency,
		FailFast:    cfg.Pipeline.FailFast,
	}, metrics, log)

	return &App{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Redis:        redisClient,
		Store:        st,
		Orchestrator: orch,
		Metrics:      metrics,
	}, nil
}

// Close releases the app's connections.
func (a *App) Close() {
	if a.Redis != nil {
		if closeErr := a.Redis.Close(); closeErr != nil {
			a.Logger.Error("close redis", logger.Error(closeErr))
		}
	}

	if closeErr := a.DB.Close(); closeErr != nil {
		a.Logger.Error("close database", logger.Error(closeErr))
	}

	_ = a.Logger.Sync()
}

// Serve runs the HTTP daemon until the context ends or the server fails.
func Serve(configPath string) error {
	app, appErr := NewApp(configPath, prometheus.DefaultRegisterer)
	if appErr != nil {
		return appErr
	}
	defer app.Close()

	app.Logger.Info("starting sentiment analysis service",
		logger.String("version", app.Config.Service.Version),
		logger.Int("port", app.Config.Service.Port))

	server := SetupHTTPServer(app)

	if runErr := server.Run(context.Background()); runErr != nil {
		app.Logger.Error("server error", logger.Error(runErr))
		return fmt.Errorf("server: %w", runErr)
	}

	app.Logger.Info("service stopped")

	return nil
}

// RunOnce executes a single pipeline run for one video, for the analyze CLI
// command.
func RunOnce(ctx context.Context, configPath, videoID string) (*domain.RunResult, error) {
	app, appErr := NewApp(configPath, prometheus.NewRegistry())
	if appErr != nil {
		return nil, appErr
	}
	defer app.Close()

	return app.Orchestrator.Run(ctx, videoID)
}
