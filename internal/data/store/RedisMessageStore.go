package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/data/redisStore"
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/pkg/logging"
)

// RedisMessageStore keeps per-session conversation history in a Redis
// list keyed by session id, trimmed by TTL. Each entry is one JSON
// encoded Turn.
type RedisMessageStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisMessageStore(store *redisStore.Store, ttl time.Duration) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		ttl:    ttl,
		logger: logging.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) AppendTurn(ctx context.Context, sessionId string, turn commonModels.Turn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshalling turn: %w", err)
	}
	if err := s.store.ListPush(ctx, sessionKey(sessionId), data); err != nil {
		log.Error("error saving turn", "error", err)
		return err
	}
	if err := s.store.Expire(ctx, sessionKey(sessionId), s.ttl); err != nil {
		log.Error("error refreshing session ttl", "error", err)
	}
	log.Debug("Saved turn")
	return nil
}

func (s *RedisMessageStore) History(ctx context.Context, sessionId string, limit int) ([]commonModels.Turn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	entries, err := s.store.ListGetLast(ctx, sessionKey(sessionId), limit)
	if err != nil {
		if s.store.IsNil(err) {
			return nil, nil
		}
		log.Error("error reading history", "error", err)
		return nil, err
	}

	turns := make([]commonModels.Turn, 0, len(entries))
	for _, entry := range entries {
		var turn commonModels.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			log.Error("skipping malformed history entry", "error", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}
