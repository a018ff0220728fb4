package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// Client caches identity-directory answers so the hourly sweeps don't hammer
// the auth admin API with the same email lookups every tick.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetUserID(ctx context.Context, emailHash, userID string) error {
	err := c.client.Set(ctx, "user_id:"+emailHash, userID, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache user id: %w", err)
	}
	return nil
}

// GetUserID returns the cached id and whether the key was present.
func (c *Client) GetUserID(ctx context.Context, emailHash string) (string, bool, error) {
	userID, err := c.client.Get(ctx, "user_id:"+emailHash).Result()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues("user_id").Inc()
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached user id: %w", err)
	}

	metrics.CacheHits.WithLabelValues("user_id").Inc()
	return userID, true, nil
}
