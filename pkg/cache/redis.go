package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis so that several server instances share
// rendered artifacts.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis at url ("redis://..." or host:port) and
// pings it, retrying with backoff. It returns ErrUnavailable if the server
// cannot be reached.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	client, err := connectRedis(url)
	if err != nil {
		return nil, err
	}
	err = RetryWithBackoff(ctx, func() error {
		return Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", ErrUnavailable, client.Options().Addr, err)
	}
	return &RedisCache{client: client}, nil
}

func connectRedis(url string) (*redis.Client, error) {
	opt, err := redisOptions(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// redisOptions parses url. Connecting is retried by [RetryWithBackoff], so
// the client makes a single dial attempt and, unless the URL sets
// max_retries, does not retry commands.
func redisOptions(url string) (*redis.Options, error) {
	opt := &redis.Options{Addr: url}
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		var err error
		if opt, err = redis.ParseURL(url); err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
	} else if url == "" {
		opt.Addr = "localhost:6379"
	}
	if opt.MaxRetries == 0 {
		opt.MaxRetries = -1
	}
	if opt.DialerRetries == 0 {
		opt.DialerRetries = 1
	}
	if opt.DialTimeout == 0 {
		opt.DialTimeout = DialTimeout
	}
	return opt, nil
}

// DialTimeout bounds each attempt to connect to Redis.
var DialTimeout = 2 * time.Second

type redisLogger struct{ l *log.Logger }

func (r redisLogger) Printf(_ context.Context, format string, v ...any) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "redis")
}

// SetRedisLogger routes go-redis messages, such as failed pool dials, to l
// at debug level instead of the standard logger.
func SetRedisLogger(l *log.Logger) {
	redis.SetLogger(redisLogger{l: l})
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close implements Cache.
func (c *RedisCache) Close() error { return c.client.Close() }

var _ Cache = (*RedisCache)(nil)
