package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPageCache keeps rendered pages in Redis or Dragonfly. Keys embed the
// document digest, so an edited document never hits a stale entry and old
// entries simply expire.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPageCache wraps client. A zero ttl keeps entries until evicted.
func NewRedisPageCache(client *redis.Client, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{client: client, ttl: ttl}
}

// PageKey is the cache key of a rendered page.
func PageKey(locale, course, section, digest string) string {
	return strings.Join([]string{"page", locale, course, section, digest}, ":")
}

func (c *RedisPageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return b, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key string, page []byte) error {
	if err := c.client.Set(ctx, key, page, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (c *RedisPageCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
