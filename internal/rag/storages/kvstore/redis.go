package kvstore

import (
	"DocuGraph/internal/rag/interfaces"
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisKVStore is a KVStore backed by Redis. Keys are namespaced with a
// fixed prefix so several stores can share one database.
type RedisKVStore struct {
	client *redis.Client
	prefix string
}

// NewRedisKVStore creates a new RedisKVStore with the given key prefix.
func NewRedisKVStore(client *redis.Client, prefix string) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix}
}

func (s *RedisKVStore) key(k string) string {
	return fmt.Sprintf("%s:%s", s.prefix, k)
}

// Get retrieves the value stored under key. The second return value reports
// whether the key exists.
func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key from redis: %w", err)
	}
	return val, true, nil
}

// Set stores value under key without expiration.
func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key in redis: %w", err)
	}
	return nil
}

// Delete removes key from the store. Deleting a missing key is not an error.
func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key from redis: %w", err)
	}
	return nil
}

// compile-time check to ensure RedisKVStore implements the KVStore interface
var _ interfaces.KVStore = (*RedisKVStore)(nil)
