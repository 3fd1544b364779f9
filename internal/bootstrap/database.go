package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/config"
	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/store"
)

const redisPingTimeout = 5 * time.Second

// SetupDatabase creates a PostgreSQL connection from config.
func SetupDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, connErr := store.NewPostgresConnection(cfg.Database)
	if connErr != nil {
		return nil, fmt.Errorf("database connection: %w", connErr)
	}

	return db, nil
}

// SetupRedis creates a Redis client for the verdict cache, or nil when the
// cache is disabled.
func SetupRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	return client, nil
}
