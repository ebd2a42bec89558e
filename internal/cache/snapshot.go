package cache

import (
	"context"
	"time"

	"github.com/dujiao-next/promo-engine/internal/constants"
	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/metrics"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// LoadFunc 快照回源函数
type LoadFunc[T any] func(ctx context.Context) (T, error)

// SnapshotCache 两级快照缓存：进程内 go-cache 在前，Redis 在后。
// 同一进程内并发回源由 singleflight 合并为一次。
type SnapshotCache[T any] struct {
	key       string
	localTTL  time.Duration
	remoteTTL time.Duration
	local     *gocache.Cache
	group     singleflight.Group
	load      LoadFunc[T]
}

// NewSnapshotCache 创建快照缓存
func NewSnapshotCache[T any](key string, localTTL, remoteTTL time.Duration, load LoadFunc[T]) *SnapshotCache[T] {
	return &SnapshotCache[T]{
		key:       key,
		localTTL:  localTTL,
		remoteTTL: remoteTTL,
		local:     gocache.New(localTTL, 2*localTTL),
		load:      load,
	}
}

// Get 读取快照，依次尝试进程内缓存、Redis、回源
func (c *SnapshotCache[T]) Get(ctx context.Context) (T, error) {
	if value, ok := c.local.Get(c.key); ok {
		metrics.ObserveSnapshotCache(constants.CacheLayerLocal, constants.CacheResultHit)
		return value.(T), nil
	}
	metrics.ObserveSnapshotCache(constants.CacheLayerLocal, constants.CacheResultMiss)

	value, err, _ := c.group.Do(c.key, func() (interface{}, error) {
		var cached T
		hit, err := GetJSON(ctx, c.key, &cached)
		switch {
		case err != nil:
			metrics.ObserveSnapshotCache(constants.CacheLayerRedis, constants.CacheResultError)
			logger.Warnw("snapshot_cache_redis_get_failed", "key", c.key, "error", err)
		case hit:
			metrics.ObserveSnapshotCache(constants.CacheLayerRedis, constants.CacheResultHit)
			c.local.Set(c.key, cached, c.localTTL)
			return cached, nil
		case Enabled():
			metrics.ObserveSnapshotCache(constants.CacheLayerRedis, constants.CacheResultMiss)
		}
		return c.reload(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// Refresh 强制回源并覆盖两级缓存
func (c *SnapshotCache[T]) Refresh(ctx context.Context) (T, error) {
	value, err, _ := c.group.Do(c.key+":refresh", func() (interface{}, error) {
		return c.reload(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

// Invalidate 删除两级缓存；其他实例的进程内缓存在 localTTL 后自然过期
func (c *SnapshotCache[T]) Invalidate(ctx context.Context) error {
	c.local.Delete(c.key)
	return Del(ctx, c.key)
}

func (c *SnapshotCache[T]) reload(ctx context.Context) (T, error) {
	value, err := c.load(ctx)
	if err != nil {
		metrics.ObserveSnapshotCache(constants.CacheLayerDB, constants.CacheResultError)
		return value, err
	}
	metrics.ObserveSnapshotCache(constants.CacheLayerDB, constants.CacheResultHit)
	if err := SetJSON(ctx, c.key, value, c.remoteTTL); err != nil {
		logger.Warnw("snapshot_cache_redis_set_failed", "key", c.key, "error", err)
	}
	c.local.Set(c.key, value, c.localTTL)
	return value, nil
}
