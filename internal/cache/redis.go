package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "idm-cli:cache:"

// RedisBackend shares entries between machines through redis. Keys carry
// the TTL so redis expires them on its own.
type RedisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend parses a redis:// URL and checks the connection.
func NewRedisBackend(ctx context.Context, rawURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisBackend{rdb: rdb}, nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, bool) {
	data, err := b.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (b *RedisBackend) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, redisKeyPrefix+key, data, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	err := b.rdb.Del(ctx, redisKeyPrefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Clear deletes every key under the tool's prefix using SCAN.
func (b *RedisBackend) Clear(ctx context.Context) (int, error) {
	removed := 0
	iter := b.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := b.rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}
	return removed, iter.Err()
}

// Close releases the connection pool.
func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
