package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/educhat/backend/pkg/logger"
)

// Client backs the rate limiter with shared fixed-window counters so limits
// hold across replicas. It deliberately stores nothing else: answers,
// embeddings and indices are never cached anywhere.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Incr bumps the counter for key in the current window and returns the new
// count. The TTL is set when the window opens and left alone afterwards, so
// the counter resets on the window boundary.
func (c *Client) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, fmt.Sprintf("ratelimit:%s", key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	if count == 1 {
		err = c.client.Expire(ctx, fmt.Sprintf("ratelimit:%s", key), window).Err()
		if err != nil {
			return count, fmt.Errorf("failed to set counter ttl: %w", err)
		}
	}

	return count, nil
}
