package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached dashboards go stale on their own if invalidation is ever missed.
const dashboardTTL = 10 * time.Minute

// ResultCache keeps computed dashboard summaries in redis. A nil *ResultCache
// is valid and disables caching, so callers never have to branch on whether
// redis is configured.
type ResultCache struct {
	rdb *redis.Client
}

// NewResultCache returns nil when no redis address is configured.
func NewResultCache(addr, password string, db int) *ResultCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &ResultCache{rdb: rdb}
}

// Ping verifies connectivity at startup.
func (c *ResultCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *ResultCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func dashboardKey(userID string) string {
	return fmt.Sprintf("dashboard_%s", userID)
}

// GetDashboard loads a cached dashboard into dest and reports whether it was
// found. Cache errors count as misses.
func (c *ResultCache) GetDashboard(ctx context.Context, userID string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, dashboardKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: failed to get dashboard for user %s: %v", userID, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Printf("cache: failed to unmarshal dashboard for user %s: %v", userID, err)
		return false
	}
	return true
}

func (c *ResultCache) SetDashboard(ctx context.Context, userID string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to marshal dashboard for user %s: %v", userID, err)
		return
	}
	if err := c.rdb.Set(ctx, dashboardKey(userID), raw, dashboardTTL).Err(); err != nil {
		log.Printf("cache: failed to set dashboard for user %s: %v", userID, err)
	}
}

// InvalidateDashboard drops the cached dashboard after an assessment is
// created or deleted.
func (c *ResultCache) InvalidateDashboard(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, dashboardKey(userID)).Err(); err != nil {
		log.Printf("cache: failed to invalidate dashboard for user %s: %v", userID, err)
	}
}
