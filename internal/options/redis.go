package options

import (
	"context"
	"encoding/json"
	"time"

	"github.com/case-import-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache shared across server instances.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache wraps a redis client.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]models.DropdownOption, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var opts []models.DropdownOption
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, false, err
	}
	return opts, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, opts []models.DropdownOption, ttl time.Duration) error {
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
