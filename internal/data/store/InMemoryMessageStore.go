package store

import (
	"context"
	"sync"

	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/pkg/logging"
)

var inMemLogger = logging.NewLogger("InMem MessageStore")

// InMemoryMessageStore is the fallback when Redis is unavailable.
// History survives only for the process lifetime.
type InMemoryMessageStore struct {
	mu       *sync.RWMutex
	sessions map[string][]commonModels.Turn
}

func NewInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		mu:       new(sync.RWMutex),
		sessions: make(map[string][]commonModels.Turn),
	}
}

func (s *InMemoryMessageStore) AppendTurn(ctx context.Context, sessionId string, turn commonModels.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionId] = append(s.sessions[sessionId], turn)
	inMemLogger.Debug("Saved turn", "sessionId", sessionId)
	return nil
}

func (s *InMemoryMessageStore) History(ctx context.Context, sessionId string, limit int) ([]commonModels.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionId]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]commonModels.Turn, len(turns))
	copy(out, turns)
	return out, nil
}
