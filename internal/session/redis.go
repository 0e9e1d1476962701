package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/eyecare-portal/pkg/circuitbreaker"
)

type RedisConfig struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// RedisBackend stores sessions in redis so several portal instances can
// share them. Calls go through a circuit breaker; a missing key does not
// count as a failure.
type RedisBackend struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
}

func NewRedisBackend(ctx context.Context, config RedisConfig) (*RedisBackend, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.MaxRetries != 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.RetryBackoff > 0 {
		opts.MinRetryBackoff = config.RetryBackoff
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBackendFromClient(client), nil
}

func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{
		client: client,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-session",
			MaxFailures: 5,
			Timeout:     5 * time.Second,
			IsFailure: func(err error) bool {
				return err != nil && !errors.Is(err, ErrNotFound)
			},
		}),
	}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := b.cb.Execute(func() error {
		v, err := b.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		value = v
		return err
	})
	return value, err
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	return b.cb.Execute(func() error {
		return b.client.Set(ctx, key, value, 0).Err()
	})
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.cb.Execute(func() error {
		return b.client.Del(ctx, key).Err()
	})
}

// Ping reports whether redis is reachable.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) Name() string {
	return "redis"
}
