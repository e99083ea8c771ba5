package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client is the connection to the login-code store. The one-time code
// registry is the only Redis consumer in this service; user and post state
// lives in MongoDB.
type Client struct {
	*redis.Client
}

// Connect parses the URL, opens the connection pool and verifies it with a
// ping, so a bad REDIS_URL fails startup rather than the first code login.
// URL format: redis://[:password@]host:port[/db]
func Connect(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}
