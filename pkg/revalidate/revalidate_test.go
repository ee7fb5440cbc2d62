package revalidate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prostorehq/storefront-backend/pkg/redis"
)

type fakePageCache struct {
	deleted   []string
	published []string
	delErr    error
	pubErr    error
}

func (f *fakePageCache) PageCacheKey(path string) string {
	return "sf:page_cache:" + path
}

func (f *fakePageCache) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return f.delErr
}

func (f *fakePageCache) Publish(ctx context.Context, channel string, message any) error {
	f.published = append(f.published, fmt.Sprint(message))
	return f.pubErr
}

func TestRedisHook_Invalidate(t *testing.T) {
	cache := &fakePageCache{}
	hook := &RedisHook{cache: cache}

	hook.Invalidate(context.Background(), "/product/classic-tee")

	if len(cache.deleted) != 1 || cache.deleted[0] != "sf:page_cache:/product/classic-tee" {
		t.Fatalf("unexpected deleted keys: %v", cache.deleted)
	}
	if len(cache.published) != 1 || cache.published[0] != "/product/classic-tee" {
		t.Fatalf("unexpected published paths: %v", cache.published)
	}
}

func TestRedisHook_SwallowsErrors(t *testing.T) {
	cache := &fakePageCache{
		delErr: errors.New("down"),
		pubErr: errors.New("down"),
	}
	hook := &RedisHook{cache: cache}

	hook.Invalidate(context.Background(), "/product/classic-tee")

	if len(cache.deleted) != 1 || len(cache.published) != 1 {
		t.Fatal("expected both operations attempted despite errors")
	}
}

func TestRedisHook_IgnoresEmptyPath(t *testing.T) {
	cache := &fakePageCache{}
	hook := &RedisHook{cache: cache}

	hook.Invalidate(context.Background(), "")

	if len(cache.deleted) != 0 || len(cache.published) != 0 {
		t.Fatal("expected no operations for empty path")
	}
}

func TestNoop(t *testing.T) {
	var hook Hook = Noop{}
	hook.Invalidate(context.Background(), "/product/classic-tee")
}

var _ pageCache = (*redis.Client)(nil)
