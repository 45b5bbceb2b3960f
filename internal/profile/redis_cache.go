package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces profile entries in a shared Redis.
const redisKeyPrefix = "feed:profile:"

// RedisCache is a Redis-backed Cache for multi-node deployments. Redis SET
// replaces the value atomically, and any Redis failure is logged and
// treated as a cache miss so feed requests degrade instead of failing.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache creates a profile cache backed by the given Redis client.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

// Get returns the cached profile on a hit; Redis errors count as misses.
func (c *RedisCache) Get(ctx context.Context, userID string) (*InterestProfile, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("profile cache read failed",
				"user_id", userID,
				"error", err)
		}
		return nil, false
	}

	var p InterestProfile
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("profile cache entry corrupt, dropping",
			"user_id", userID,
			"error", err)
		c.Delete(ctx, userID)
		return nil, false
	}
	return &p, true
}

// Set stores the profile with the given TTL.
func (c *RedisCache) Set(ctx context.Context, userID string, p *InterestProfile, ttl time.Duration) {
	if p == nil || ttl <= 0 {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("failed to marshal profile for cache",
			"user_id", userID,
			"error", err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+userID, data, ttl).Err(); err != nil {
		c.logger.Warn("profile cache write failed",
			"user_id", userID,
			"error", err)
	}
}

// Delete removes the cached profile for the user.
func (c *RedisCache) Delete(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, redisKeyPrefix+userID).Err(); err != nil {
		c.logger.Warn("profile cache delete failed",
			"user_id", userID,
			"error", err)
	}
}
