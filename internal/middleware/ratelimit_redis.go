package middleware

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitStore implements RateLimitStore backed by Redis, so limits
// are shared across API replicas. It uses a fixed window counter: INCR on a
// per-key counter plus an EXPIRE set when the window opens.
//
// The store fails open: if Redis is unreachable the request is allowed with
// a full quota, and the error is counted so operators can see it.
type RedisRateLimitStore struct {
	client  *redis.Client
	metrics *Metrics
	logger  *slog.Logger
}

// RedisStoreOption configures a RedisRateLimitStore.
type RedisStoreOption func(*RedisRateLimitStore)

// WithRateLimitMetrics attaches metrics so Redis errors are counted.
func WithRateLimitMetrics(m *Metrics) RedisStoreOption {
	return func(s *RedisRateLimitStore) {
		s.metrics = m
	}
}

// WithRateLimitLogger attaches a logger for fail-open events.
func WithRateLimitLogger(l *slog.Logger) RedisStoreOption {
	return func(s *RedisRateLimitStore) {
		s.logger = l
	}
}

// NewRedisRateLimitStore creates a Redis-backed rate limit store.
func NewRedisRateLimitStore(client *redis.Client, opts ...RedisStoreOption) *RedisRateLimitStore {
	s := &RedisRateLimitStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow checks if a request from the given key should be allowed.
// Implements the RateLimitStore interface.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, int, int) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, config.WindowDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.failOpen(err, config)
	}

	count := int(incr.Val())
	if count <= config.RequestsPerWindow {
		return true, config.RequestsPerWindow - count, 0
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return s.failOpen(err, config)
	}
	retryAfter := int(ttl.Seconds())
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return false, 0, retryAfter
}

// failOpen allows the request with a full quota when Redis is unavailable.
func (s *RedisRateLimitStore) failOpen(err error, config RateLimitConfig) (bool, int, int) {
	if s.metrics != nil {
		s.metrics.IncRateLimitRedisErrors()
	}
	if s.logger != nil {
		s.logger.Warn("rate limit store unavailable, failing open", "error", err)
	}
	return true, config.RequestsPerWindow, 0
}
