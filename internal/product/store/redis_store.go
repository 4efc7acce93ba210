package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisKey is the key holding the collection when none is configured.
const DefaultRedisKey = "techstore:products"

// RedisStore implements ProductStore by keeping the encoded collection under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a new instance of ProductStore backed by Redis.
// The client should already be connected.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads the snapshot key. A missing key is an empty collection.
func (r *RedisStore) Load(ctx context.Context) ([]Product, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Product{}, nil
		}
		return nil, fmt.Errorf("failed to load products snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// Save overwrites the snapshot key with the whole collection.
func (r *RedisStore) Save(ctx context.Context, products []Product) error {
	data, err := encodeSnapshot(products)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save products snapshot: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
