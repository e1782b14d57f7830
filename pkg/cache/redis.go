package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a [RedisCache].
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key, e.g. "clustergraph:".
	Prefix string

	// DialTimeout bounds connection setup. Defaults to 5s.
	DialTimeout time.Duration

	// Backoff controls retries of network failures. Defaults to DefaultBackoff.
	Backoff *Backoff
}

// RedisCache stores entries in Redis so several server instances can share
// rendered artifacts.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	backoff Backoff
}

// NewRedisCache connects to Redis. The connection is established lazily by
// the client; use [RedisCache.Ping] to check reachability up front.
func NewRedisCache(opts RedisOptions) *RedisCache {
	dial := opts.DialTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dial,
		MaxRetries:  -1,
	})
	return newRedisCache(client, opts)
}

func newRedisCache(client *redis.Client, opts RedisOptions) *RedisCache {
	b := DefaultBackoff
	if opts.Backoff != nil {
		b = *opts.Backoff
	}
	return &RedisCache{client: client, prefix: opts.Prefix, backoff: b}
}

// Ping checks that the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", func() error {
		return c.client.Ping(ctx).Err()
	})
}

// Get retrieves a value. redis.Nil is reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := false
	err := c.do(ctx, "get", func() error {
		b, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data, hit = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set stores a value. A ttl of zero keeps the key until it is evicted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.do(ctx, "set", func() error {
		return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.do(ctx, "del", func() error {
		return c.client.Del(ctx, c.prefix+key).Err()
	})
}

// Close closes the client connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// do runs fn with retries on network failures. Network errors are returned
// wrapping [ErrNetwork].
func (c *RedisCache) do(ctx context.Context, op string, fn func() error) error {
	err := c.backoff.Retry(ctx, func() error {
		err := fn()
		if isNetworkErr(err) {
			return Retryable(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if isNetworkErr(err) {
		return fmt.Errorf("redis %s: %w: %w", op, ErrNetwork, err)
	}
	return fmt.Errorf("redis %s: %w", op, err)
}

func isNetworkErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	var opErr *net.OpError
	return errors.As(err, &netErr) || errors.As(err, &opErr)
}

var _ Cache = (*RedisCache)(nil)
