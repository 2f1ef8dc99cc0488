package website

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octobees/leadscout/internal/entity"
)

const (
	verdictKeyPrefix  = "leadscout:verdict:"
	DefaultVerdictTTL = 24 * time.Hour
)

// RedisCache keeps verdicts in Redis so repeated runs skip refetching the same site.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache wraps client; a non-positive ttl uses DefaultVerdictTTL.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultVerdictTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func verdictKey(url string) string {
	return verdictKeyPrefix + url
}

func (c *RedisCache) Get(ctx context.Context, url string) (entity.WebsiteVerdict, bool, error) {
	raw, err := c.client.Get(ctx, verdictKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return entity.WebsiteVerdict{}, false, nil
	}
	if err != nil {
		return entity.WebsiteVerdict{}, false, fmt.Errorf("get verdict: %w", err)
	}
	var verdict entity.WebsiteVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return entity.WebsiteVerdict{}, false, fmt.Errorf("decode verdict: %w", err)
	}
	return verdict, true, nil
}

func (c *RedisCache) Set(ctx context.Context, url string, verdict entity.WebsiteVerdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := c.client.Set(ctx, verdictKey(url), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("set verdict: %w", err)
	}
	return nil
}
