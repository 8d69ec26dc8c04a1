package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyValueStore is a Redis implementation of KeyValueStore and Deduper.
type RedisKeyValueStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration // zero keeps keys forever
}

// NewRedisKeyValueStore creates a new instance of RedisKeyValueStore. Keys are
// namespaced with prefix.
func NewRedisKeyValueStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisKeyValueStore {
	return &RedisKeyValueStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisKeyValueStore) key(k string) string {
	return s.prefix + k
}

// Get retrieves the value stored under key.
func (s *RedisKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key.
func (s *RedisKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (s *RedisKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// MarkOnce uses SETNX so concurrent callers agree on a single winner.
func (s *RedisKeyValueStore) MarkOnce(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark key %s: %w", key, err)
	}
	return ok, nil
}
