package redisStore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/pkg/logging"
)

type Store struct {
	client *redis.Client
	logger *logging.Logger
}

// NewStore connects to Redis and verifies the connection with a short
// ping. A nil-error return means the store is usable; callers fall back
// to the in-memory store otherwise.
func NewStore(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	logger := logging.NewLogger("Redis Store")

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "error", err)
		return nil, err
	}

	store := &Store{client: client, logger: logger}
	go store.closeOnDone(ctx)
	return store, nil
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("Closing Redis store")
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
	}
}

// NewTestStore wraps an existing client, used with miniredis in tests.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logging.NewLogger("Redis Store (test)"),
	}
}
