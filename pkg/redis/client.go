package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rmorand/sciquant/pkg/config"
	"github.com/rmorand/sciquant/pkg/logger"
)

// Client wraps the go-redis client. The cache is strictly optional: when
// disabled every operation is a no-op and the pipeline works directly
// against the provider.
type Client struct {
	rdb     *redis.Client
	logger  *logger.Logger
	enabled bool
}

// New creates a Redis client from config. A failed connection disables the
// cache instead of failing the run.
func New(cfg config.RedisConfig, log *logger.Logger) *Client {
	if !cfg.Enabled {
		return &Client{logger: log, enabled: false}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, snapshot cache disabled")
		return &Client{logger: log, enabled: false}
	}

	log.WithField("addr", cfg.Addr()).Info("Redis snapshot cache enabled")
	return &Client{rdb: rdb, logger: log, enabled: true}
}

// Enabled reports whether the cache is usable.
func (c *Client) Enabled() bool { return c.enabled }

// Redis returns the underlying go-redis client.
func (c *Client) Redis() *redis.Client { return c.rdb }

// Close closes the connection.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// SnapshotKey builds the cache key for a symbol snapshot.
func SnapshotKey(symbol string) string {
	return fmt.Sprintf("snapshot:%s", symbol)
}
