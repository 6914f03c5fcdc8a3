package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/langmgr/pkg/g2p"
)

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL        string
	Password   string
	DB         int
	MaxRetries int
	PoolSize   int
}

// RedisBackend shares conversion results between processes
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to Redis and verifies the connection
func NewRedisBackend(config RedisConfig) (*RedisBackend, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.DB > 0 {
		opts.DB = config.DB
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBackend{client: client}, nil
}

func (r *RedisBackend) Name() string { return "redis" }

// Get retrieves cached results; corrupt entries are deleted and reported as misses
func (r *RedisBackend) Get(ctx context.Context, key string) ([]g2p.Result, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var results []g2p.Result
	if err := json.Unmarshal(data, &results); err != nil {
		r.client.Del(ctx, key)
		return nil, ErrCacheMiss
	}

	return results, nil
}

// Set stores results with ttl; zero ttl means no expiry
func (r *RedisBackend) Set(ctx context.Context, key string, results []g2p.Result, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	return r.client.Set(ctx, key, data, ttl).Err()
}

// Invalidate deletes keys under prefix using SCAN
func (r *RedisBackend) Invalidate(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Len counts the conversion keys held in the database
func (r *RedisBackend) Len(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		count  int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+":*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan failed: %w", err)
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// Close closes the Redis connection
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
