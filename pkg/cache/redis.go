package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/illmade-knight/go-storecache/pkg/throttle"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisCache is a generic, Redis-backed implementation of Cache. Expiry is
// delegated to Redis via per-key TTLs. It lets several tool processes
// share one cache so the backing store sees a single fetch per container
// across all of them.
//
// The read path never raises: any Redis failure is logged and reported as
// a miss, so an unreachable Redis degrades to uncached reads rather than
// errors.
type RedisCache[K comparable, V any] struct {
	redisClient *redis.Client
	logger      zerolog.Logger
	keyPrefix   string
	ttl         time.Duration
}

// NewRedisCache creates and connects a new generic RedisCache. It pings
// the Redis server to ensure connectivity before returning.
func NewRedisCache[K comparable, V any](
	ctx context.Context,
	cfg *RedisConfig,
	logger zerolog.Logger,
) (*RedisCache[K, V], error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "storecache:"
	}

	logger.Info().Str("redis_address", cfg.Addr).Msg("Successfully connected to Redis.")

	return &RedisCache[K, V]{
		redisClient: rdb,
		logger:      logger.With().Str("component", "RedisCache").Logger(),
		keyPrefix:   prefix,
		ttl:         cfg.TTL,
	}, nil
}

// Get retrieves an entry from Redis. A redis.Nil error is a normal miss;
// any other error is logged and also reported as a miss.
func (c *RedisCache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V
	stringKey := c.redisKey(key)
	cachedData, err := c.redisClient.Get(ctx, stringKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error().Err(err).Str("key", stringKey).Msg("Unexpected Redis error during get.")
		}
		return zero, false
	}

	var value V
	if err := json.Unmarshal([]byte(cachedData), &value); err != nil {
		c.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to unmarshal cached data.")
		return zero, false
	}

	c.logger.Debug().Str("key", stringKey).Msg("Redis cache hit.")
	return value, true
}

// Put stores a value in Redis with the configured TTL. Non-real verdicts
// are rejected as a logged no-op.
func (c *RedisCache[K, V]) Put(ctx context.Context, key K, value V, verdict throttle.Verdict) {
	stringKey := c.redisKey(key)
	if verdict != throttle.VerdictReal {
		c.logger.Warn().Str("key", stringKey).Stringer("verdict", verdict).Msg("Rejected cache write with non-real verdict.")
		return
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		c.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to marshal data for caching.")
		return
	}

	if err := c.redisClient.Set(ctx, stringKey, jsonData, c.ttl).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to set data in Redis cache.")
		return
	}

	c.logger.Debug().Str("key", stringKey).Msg("Successfully stored data in Redis cache.")
}

// Invalidate removes a single entry.
func (c *RedisCache[K, V]) Invalidate(ctx context.Context, key K) {
	stringKey := c.redisKey(key)
	if err := c.redisClient.Del(ctx, stringKey).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to delete key from Redis cache.")
	}
}

// InvalidateAll removes every entry under this cache's key prefix,
// scanning rather than flushing so other users of the same Redis are
// untouched.
func (c *RedisCache[K, V]) InvalidateAll(ctx context.Context) {
	it := c.redisClient.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()
	for it.Next(ctx) {
		if err := c.redisClient.Del(ctx, it.Val()).Err(); err != nil {
			c.logger.Error().Err(err).Str("key", it.Val()).Msg("Failed to delete key during cache flush.")
		}
	}
	if err := it.Err(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to scan Redis keys during cache flush.")
	}
}

func (c *RedisCache[K, V]) redisKey(key K) string {
	return c.keyPrefix + fmt.Sprintf("%v", key)
}

// Close closes the Redis client connection.
func (c *RedisCache[K, V]) Close() error {
	if c.redisClient != nil {
		c.logger.Info().Msg("Closing Redis client connection...")
		return c.redisClient.Close()
	}
	return nil
}
