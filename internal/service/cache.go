package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type cache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// get fills out from key. A miss or an unreadable entry reports false.
func (c *cache) get(ctx context.Context, prefix, key string, out any) bool {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			mylogger.Warn(ctx, c.logger, "Cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.metrics.CacheMiss(prefix)
		return false
	}

	if err := json.Unmarshal(val, out); err != nil {
		mylogger.Warn(ctx, c.logger, "Dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		c.metrics.CacheMiss(prefix)
		return false
	}

	c.metrics.CacheHit(prefix)
	return true
}

func (c *cache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		mylogger.Warn(ctx, c.logger, "Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		mylogger.Warn(ctx, c.logger, "Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *cache) del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		mylogger.Warn(ctx, c.logger, "Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
