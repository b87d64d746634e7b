package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// RedisStore keeps values as plain redis strings.
type RedisStore struct {
	rdb *goredis.Client
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, addr string, db int) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: redisDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *goredis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

// Put implements Store.
func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.rdb.Set(ctx, key, value, 0).Err()
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// Close implements Store.
func (r *RedisStore) Close() error { return r.rdb.Close() }
