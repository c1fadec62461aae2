package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const jwtPrefix = "jwt.block."

// jwtKey hashes the token so raw credentials never sit in Redis.
func jwtKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return servicePrefix + jwtPrefix + hex.EncodeToString(sum[:])
}

// Revoke blacklists token for ttl, normally the token's remaining lifetime.
func (c *Client) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, jwtKey(token), true, ttl).Err()
}

func (c *Client) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := c.client.Get(ctx, jwtKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
