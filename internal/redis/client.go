package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

// Wrap adapts an existing go-redis client, for example one pointed at miniredis.
func Wrap(client *redis.Client) *Client {
	return &Client{client}
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// UserEventsChannel is the pub/sub channel carrying one user's stream events.
func UserEventsChannel(userID string) string {
	return fmt.Sprintf("events:user:%s", userID)
}

const ProductsCacheKey = "premium:products"

func RateLimitKey(scope, subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, subject)
}
