package cache

import (
	"context"
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
)

// StatsCache stores computed dashboard aggregates for a short TTL so the
// dashboard endpoint does not hit the ledger tables on every request.
// Implementations treat misses and backend failures the same way: the
// caller recomputes.
type StatsCache interface {
	// Get returns the cached stats for key, or found=false on a miss.
	Get(ctx context.Context, key string) (stats billing.DashboardStats, found bool)
	// Set stores stats under key for ttl.
	Set(ctx context.Context, key string, stats billing.DashboardStats, ttl time.Duration)
	// Invalidate drops the entry for key, if present.
	Invalidate(ctx context.Context, key string)
	// Close releases any resources held by the cache.
	Close() error
}
