package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisOptions configures a RedisStorage.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Namespace is prepended to every key as "<namespace>:".
	Namespace string
}

// RedisStorage is a Backend on a Redis server. Values never expire.
type RedisStorage struct {
	client    *redis.Client
	namespace string
}

var _ Backend = (*RedisStorage)(nil)

// NewRedisStorage connects to Redis and pings it with the provided context.
func NewRedisStorage(ctx context.Context, opts RedisOptions) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStorage{client: client, namespace: opts.Namespace}, nil
}

func (r *RedisStorage) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

// Close closes the Redis client
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Get retrieves a value by key
func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set stores value under key without a TTL
func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Delete removes a key
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return r.client.Del(ctx, r.key(key)).Err()
}

// Keys walks the keyspace with SCAN and returns matching keys without the namespace.
func (r *RedisStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	strip := len(r.key(""))
	iter := r.client.Scan(ctx, 0, escapeGlob(r.key(prefix))+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[strip:])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob makes s match itself literally in a SCAN MATCH pattern.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
