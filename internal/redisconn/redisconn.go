// Package redisconn opens go-redis clients from REDIS_URL style settings.
package redisconn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Options parses either a redis:// URL or a bare host:port.
func Options(redisURL string) (*redis.Options, error) {
	if strings.Contains(redisURL, "://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		return opt, nil
	}
	opt, err := redis.ParseURL("redis://" + redisURL)
	if err != nil {
		// Fallback to simple connection
		return &redis.Options{Addr: redisURL}, nil
	}
	return opt, nil
}

// Dial connects and pings, closing the client if the ping fails.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := Options(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
