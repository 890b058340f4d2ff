package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/edge-tracker/internal/adapters/config"
	"github.com/selivandex/edge-tracker/internal/tracker"
	"github.com/selivandex/edge-tracker/pkg/logger"
)

// Client wraps a RedLock manager for per-strategy writer locks
type Client struct {
	lockManager *redlock.RedLock
	cache       *redis.Client
}

// New creates new Redis client with RedLock support
func New(cfg *config.RedisConfig) (*Client, error) {
	// Single instance; a cluster deployment would list multiple
	// tcp:// addresses here
	addrs := []string{fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lockManager, err := redlock.NewRedLock(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("failed to create redlock manager: %w", err)
	}

	cache := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := cache.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connection established (redlock)",
		zap.Strings("addresses", addrs),
	)

	return &Client{lockManager: lockManager, cache: cache}, nil
}

// LockFactory returns a factory for per-strategy writer locks
func (c *Client) LockFactory() tracker.WriterLockFactory {
	return &redisLockFactory{
		lockManager: c.lockManager,
		ping: func(ctx context.Context) error {
			return c.cache.Ping(ctx).Err()
		},
	}
}

// Health checks redis health by cycling a test lock
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const testLock = "health:check"
	expiry, err := c.lockManager.Lock(ctx, testLock, time.Second)
	if err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	if expiry <= 0 {
		return fmt.Errorf("redis health check failed: invalid expiry")
	}

	_ = c.lockManager.UnLock(ctx, testLock)
	return nil
}

// Close closes redis connections
func (c *Client) Close() error {
	if c.cache != nil {
		logger.Info("closing redis client")
		return c.cache.Close()
	}
	return nil
}
