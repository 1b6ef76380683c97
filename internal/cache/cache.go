package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "foodblog:"

// Client is an optional Redis cache. A nil *Client, or one whose server is
// unreachable, behaves as a cache that always misses.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// New returns a client for addr. It returns nil when addr is empty.
func New(addr, password string, db int, logger *slog.Logger) *Client {
	if addr == "" {
		return nil
	}
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		}),
		logger: logger.With("component", "cache"),
	}
}

// Ping checks connectivity. Callers use it only to log availability at startup.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Get returns the cached value, or nil on a miss or any Redis error.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil {
		return nil
	}
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		c.logger.Debug("cache get failed", "key", key, "error", err)
		return nil
	}
	return val
}

// Set stores value with ttl. Redis errors are logged and dropped.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
