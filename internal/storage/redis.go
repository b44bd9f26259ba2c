package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "puppyjudge:"

// RedisBackend stores documents as Redis strings
type RedisBackend struct {
	client *redis.Client
}

// ConnectRedis initializes a Redis client from URL or host:port input
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisBackend wraps an existing client
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Load retrieves a document
func (r *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, wrap("load", key, err)
}

// Save replaces a document
func (r *RedisBackend) Save(ctx context.Context, key string, value []byte) error {
	return wrap("save", key, r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err())
}

// Delete removes a document
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return wrap("delete", key, r.client.Del(ctx, redisKeyPrefix+key).Err())
}

// Close closes the client
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
