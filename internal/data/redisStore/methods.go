package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) ListPush(ctx context.Context, key string, value interface{}) error {
	return s.client.RPush(ctx, key, value).Err()
}

// ListGetLast returns the last n entries of the list at key, oldest
// first. n <= 0 returns the whole list.
func (s *Store) ListGetLast(ctx context.Context, key string, n int) ([]string, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}
	return s.client.LRange(ctx, key, start, -1).Result()
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
