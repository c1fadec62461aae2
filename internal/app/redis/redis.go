package redis

import (
	"context"
	"fmt"
	"strconv"

	"carematch/internal/app/config"

	"github.com/redis/go-redis/v9"
)

const servicePrefix = "carematch." // prefix for every key this service owns

type Client struct {
	cfg    config.RedisConfig
	client *redis.Client
}

// New connects and pings Redis.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	client := &Client{cfg: cfg}

	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Username:    cfg.User,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})
	client.client = redisClient

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("cant ping redis: %w", err)
	}

	return client, nil
}

// Raw exposes the underlying client for stream publishing.
func (c *Client) Raw() *redis.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}
