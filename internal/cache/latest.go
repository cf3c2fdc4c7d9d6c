package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hab-telemetry/rockblock-receiver/internal/config"
	"github.com/hab-telemetry/rockblock-receiver/internal/domain"
)

const latestKeyPrefix = "rockblock:latest:"

// LatestCache keeps the most recently stored message per device in Redis
// so the API can answer "where is the balloon now" without a bucket scan.
// Writes are best-effort; the bucket remains the source of truth.
type LatestCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLatestCache(cfg config.CacheConfig) (*LatestCache, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &LatestCache{
		client: client,
		ttl:    time.Duration(cfg.LatestTTLSeconds) * time.Second,
	}, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// Set records msg as the latest message for its device. A zero TTL keeps
// the entry until the next delivery overwrites it.
func (c *LatestCache) Set(ctx context.Context, msg *domain.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling latest message: %w", err)
	}
	if err := c.client.Set(ctx, latestKeyPrefix+msg.IMEI, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Get returns the cached latest message for a device, or nil when the
// cache has no entry.
func (c *LatestCache) Get(ctx context.Context, imei string) (*domain.Message, error) {
	payload, err := c.client.Get(ctx, latestKeyPrefix+imei).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var msg domain.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decoding cached message: %w", err)
	}
	return &msg, nil
}

// Close shuts down the underlying Redis client.
func (c *LatestCache) Close() error {
	return c.client.Close()
}
