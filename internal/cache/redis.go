package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
)

// ErrCacheMiss is returned when the key is absent or caching is disabled.
var ErrCacheMiss = errors.New("cache miss")

// RedisCache provides caching using Redis. When disabled every Get is a
// miss and every Set is a no-op, so callers never branch on availability.
type RedisCache struct {
	client  *redis.Client
	enabled bool
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{client: client, enabled: true}, nil
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return ErrCacheMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return errors.Wrap(err, "failed to get value from Redis")
	}

	if err := json.Unmarshal(data, value); err != nil {
		return errors.Wrap(err, "failed to unmarshal cached value")
	}

	return nil
}

// Set stores a value in cache with optional expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value for caching")
	}

	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return errors.Wrap(err, "failed to set value in Redis")
	}

	return nil
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

// WeatherCacheKey generates a cache key for a city's weather snapshot
func WeatherCacheKey(city string) string {
	return fmt.Sprintf("weather:%s", city)
}

// NewsCacheKey is the cache key for the news ticker feed
func NewsCacheKey() string {
	return "feed:news"
}

// SlideshowCacheKey is the cache key for the slideshow feed
func SlideshowCacheKey() string {
	return "feed:slideshow"
}

// CityCacheKey generates a cache key for a city autocomplete prefix
func CityCacheKey(prefix string) string {
	return fmt.Sprintf("city:%s", prefix)
}

// BoardCacheKey is the cache key for the dashboard order board snapshot
func BoardCacheKey() string {
	return "dashboard:board"
}

// UserTokenCacheKey generates a cache key for a bearer token lookup
func UserTokenCacheKey(token string) string {
	return fmt.Sprintf("token:%s", token)
}

// TicketCacheKey generates a cache key for ticket data
func TicketCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("ticket:%s", id.String())
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if !c.enabled || c.client == nil {
		return nil
	}
	return c.client.Close()
}
