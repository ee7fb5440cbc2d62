// Package revalidate notifies the storefront renderer that a cached page is
// stale. Invalidation is best effort; callers treat failures as non-fatal.
package revalidate

import (
	"context"

	"github.com/prostorehq/storefront-backend/pkg/logger"
	"github.com/prostorehq/storefront-backend/pkg/redis"
)

// Hook receives the path of a page whose cached render is out of date.
type Hook interface {
	Invalidate(ctx context.Context, path string)
}

type pageCache interface {
	PageCacheKey(path string) string
	Del(ctx context.Context, keys ...string) error
	Publish(ctx context.Context, channel string, message any) error
}

// RedisHook drops the cached render and broadcasts the stale path so the
// renderer can rebuild it.
type RedisHook struct {
	cache pageCache
	logg  *logger.Logger
}

// NewRedisHook wires the hook against the shared redis client.
func NewRedisHook(cache *redis.Client, logg *logger.Logger) *RedisHook {
	return &RedisHook{cache: cache, logg: logg}
}

// Invalidate removes the cached page and publishes the stale path. Errors are
// logged and swallowed so a cache outage never fails a cart write.
func (h *RedisHook) Invalidate(ctx context.Context, path string) {
	if h == nil || h.cache == nil || path == "" {
		return
	}
	if err := h.cache.Del(ctx, h.cache.PageCacheKey(path)); err != nil {
		h.warn(ctx, "failed to drop cached page", path, err)
	}
	if err := h.cache.Publish(ctx, redis.RevalidateChannel, path); err != nil {
		h.warn(ctx, "failed to publish stale path", path, err)
	}
}

func (h *RedisHook) warn(ctx context.Context, msg, path string, err error) {
	if h.logg == nil {
		return
	}
	h.logg.Warn(h.logg.WithField(ctx, "path", path), msg+": "+err.Error())
}

// Noop satisfies Hook without side effects.
type Noop struct{}

// Invalidate does nothing.
func (Noop) Invalidate(context.Context, string) {}
