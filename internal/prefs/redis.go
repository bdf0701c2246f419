package prefs

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the theme under Key in Redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: Key}
}

func (r *RedisStore) Load(ctx context.Context) (Theme, bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	theme, ok := ParseTheme(val)
	return theme, ok, nil
}

func (r *RedisStore) Save(ctx context.Context, theme Theme) error {
	return r.client.Set(ctx, r.key, string(theme), 0).Err()
}
