package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStatsCache implements StatsCache using Redis. Suitable for
// multi-instance deployments where all instances should serve the same
// cached aggregates.
type RedisStatsCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStatsCache creates a Redis-backed stats cache, verifying the
// connection before returning.
func NewRedisStatsCache(cfg RedisConfig, logger *zap.Logger) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{
		client:    client,
		keyPrefix: "billing:dashboard:",
		logger:    logger,
	}, nil
}

// NewRedisStatsCacheWithClient creates a cache around an existing client.
// Useful for tests and for sharing one client across components.
func NewRedisStatsCacheWithClient(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisStatsCache {
	if keyPrefix == "" {
		keyPrefix = "billing:dashboard:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Get returns the cached stats for key. Redis errors are logged and
// reported as a miss so the dashboard stays available without Redis.
func (c *RedisStatsCache) Get(ctx context.Context, key string) (billing.DashboardStats, bool) {
	var stats billing.DashboardStats

	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return stats, false
	}
	if err := json.Unmarshal(payload, &stats); err != nil {
		c.logger.Warn("dashboard cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, c.keyPrefix+key)
		return billing.DashboardStats{}, false
	}
	return stats, true
}

// Set stores stats under key for ttl. Failures are logged, not returned.
func (c *RedisStatsCache) Set(ctx context.Context, key string, stats billing.DashboardStats, ttl time.Duration) {
	payload, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warn("dashboard cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, payload, ttl).Err(); err != nil {
		c.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the entry for key
func (c *RedisStatsCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		c.logger.Warn("dashboard cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

// Ensure RedisStatsCache implements StatsCache
var _ StatsCache = (*RedisStatsCache)(nil)
