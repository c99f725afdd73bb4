package cache

import (
	"github.com/shulesync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewStatsCache creates a stats cache from configuration. When Redis is
// enabled and reachable it is preferred; otherwise the in-memory cache
// serves, with a warning, since stale aggregates across instances are
// acceptable for dashboard reads.
func NewStatsCache(cfg config.RedisConfig, logger *zap.Logger) StatsCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Enabled {
		redisCache, err := NewRedisStatsCache(RedisConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Password: cfg.Password,
			DB:       cfg.DB,
		}, logger)
		if err == nil {
			logger.Info("using Redis dashboard stats cache")
			return redisCache
		}
		logger.Warn("Redis unavailable, falling back to in-memory dashboard stats cache",
			zap.Error(err),
		)
	}

	return NewInMemoryStatsCache()
}
