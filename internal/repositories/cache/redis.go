// Package cache provides the Redis-backed balance cache. Balances are
// cached on the read path only and every committed transfer invalidates
// the participants' entries. A read racing a commit can re-populate the
// key with the pre-commit balance, so cached values are best-effort and
// stale for at most the TTL; the account store stays authoritative.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ErrCacheMiss is returned when no cached balance exists for an account.
var ErrCacheMiss = errors.New("cache miss")

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisClient creates a redis client from config.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// BalanceCache caches account balances keyed by account ID.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

func (c *BalanceCache) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	val, err := c.client.Get(ctx, balanceKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, ErrCacheMiss
		}
		return decimal.Zero, fmt.Errorf("failed to get cached balance: %w", err)
	}
	balance, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt cached balance: %w", err)
	}
	return balance, nil
}

func (c *BalanceCache) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	return c.client.Set(ctx, balanceKey(accountID), balance.String(), c.ttl).Err()
}

func (c *BalanceCache) InvalidateAccount(ctx context.Context, accountID string) error {
	return c.client.Del(ctx, balanceKey(accountID)).Err()
}

// HealthCheck pings redis.
func (c *BalanceCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *BalanceCache) Close() error {
	return c.client.Close()
}

func balanceKey(accountID string) string {
	return "balance:" + accountID
}
