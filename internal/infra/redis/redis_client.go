package redis

import (
	"context"
	"fmt"
	"strings"

	"receipt-desk-bot/internal/config"

	"github.com/go-redis/redis/v8"
)

// Client wraps go-redis with the key prefix every repo in this package uses.
type Client struct {
	cli    *redis.Client
	prefix string
}

func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	// Accept redis:// URLs as well as plain host:port.
	if strings.Contains(cfg.URL, "://") {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if cfg.Password != "" {
			parsed.Password = cfg.Password
		}
		opts = parsed
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: c, prefix: strings.TrimSuffix(cfg.KeyPrefix, ":")}, nil
}

// newClientFrom is used by tests that bring their own go-redis client.
func newClientFrom(c *redis.Client, prefix string) *Client {
	return &Client{cli: c, prefix: prefix}
}

func (c *Client) key(parts ...string) string {
	if c.prefix == "" {
		return strings.Join(parts, ":")
	}
	return c.prefix + ":" + strings.Join(parts, ":")
}

func (c *Client) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *Client) Close() error { return c.cli.Close() }
