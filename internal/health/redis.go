// Package health provides reachability checks for the feed server's
// external dependencies, surfaced through the readiness endpoint.
package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChecker reports whether the profile cache Redis is reachable.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a health checker for the Redis profile cache.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// HealthCheck sends a PING. Redis being down is reported but does not
// fail readiness; the server degrades to in-process caching.
func (r *RedisChecker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}
	return nil
}
