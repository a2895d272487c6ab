// Package cache stores computed JSON responses so that repeated requests skip the computation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/gymcrm/internal/errors"
	"github.com/redis/go-redis/v9"
)

// Store is a byte-oriented key value store with expiry.
type Store interface {
	// Get returns false when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Redis implements Store on top of a Redis server.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis server at addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, logger *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{ //nolint:exhaustruct // defaults are fine.
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis %s: %w", addr, err), client.Close())
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to redis", slog.String("addr", addr))
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

const keyPrefix = "gymcrm:"

// RecommendationsKey is the key of a user's cached recommendation bundle.
func RecommendationsKey(userID string) string {
	return keyPrefix + "recommendations:" + userID
}

// OptimalTimesKey is the key of a user's cached optimal workout time report.
func OptimalTimesKey(userID string) string {
	return keyPrefix + "optimal-times:" + userID
}

// GetOrCompute returns the cached value of key or computes it and caches it for ttl.
//
// The cache is best effort: store failures are logged and the value is computed as if the store was empty.
// A nil store disables caching.
func GetOrCompute[T any](
	ctx context.Context,
	store Store,
	logger *slog.Logger,
	key string,
	ttl time.Duration,
	compute func(ctx context.Context) (T, error),
) (T, error) {
	if store == nil {
		return compute(ctx)
	}

	cached, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		logger.LogAttrs(ctx, slog.LevelWarn, "cache get failed", slog.String("key", key), errors.SlogError(err))
	case ok:
		var value T
		if err = json.Unmarshal(cached, &value); err == nil {
			logger.LogAttrs(ctx, slog.LevelDebug, "cache hit", slog.String("key", key))
			return value, nil
		}
		logger.LogAttrs(ctx, slog.LevelWarn, "discarding malformed cache entry",
			slog.String("key", key), errors.SlogError(err))
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "cache encode failed", slog.String("key", key), errors.SlogError(err))
		return value, nil
	}
	if err = store.Set(ctx, key, encoded, ttl); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "cache set failed", slog.String("key", key), errors.SlogError(err))
	}
	return value, nil
}

// InvalidateUser drops every cached report of the user. Failures are logged.
func InvalidateUser(ctx context.Context, store Store, logger *slog.Logger, userID string) {
	if store == nil {
		return
	}
	if err := store.Delete(ctx, RecommendationsKey(userID), OptimalTimesKey(userID)); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "cache invalidation failed",
			slog.String("user_id", userID), errors.SlogError(err))
	}
}
