package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/logger"
)

const verdictKeyPrefix = "verdict:"

// VerdictCache mirrors verdict existence in Redis so replay dedup checks stay
// off the database. It is strictly a cache: a miss means "ask Postgres", never
// "no verdict".
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewVerdictCache wraps a Redis client as a verdict existence cache.
func NewVerdictCache(client *redis.Client, ttl time.Duration, log logger.Logger) *VerdictCache {
	return &VerdictCache{client: client, ttl: ttl, logger: log}
}

// Has reports whether a verdict existence key is cached for the comment.
func (c *VerdictCache) Has(ctx context.Context, commentID string) (bool, error) {
	count, existsErr := c.client.Exists(ctx, verdictKey(commentID)).Result()
	if existsErr != nil {
		return false, fmt.Errorf("cache exists check: %w", existsErr)
	}

	return count > 0, nil
}

// Mark records verdict existence for the given comments. All keys are set in
// one round trip.
func (c *VerdictCache) Mark(ctx context.Context, commentIDs ...string) error {
	if len(commentIDs) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, commentID := range commentIDs {
		pipe.Set(ctx, verdictKey(commentID), "1", c.ttl)
	}

	if _, execErr := pipe.Exec(ctx); execErr != nil {
		return fmt.Errorf("cache mark verdicts: %w", execErr)
	}

	return nil
}

func verdictKey(commentID string) string {
	return verdictKeyPrefix + commentID
}
