package chat

import "sync"

// sessionLocks serializes turns within one session so concurrent
// requests cannot interleave history for the same conversation.
// Different sessions proceed independently.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *sessionLocks) lock(sessionId string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionId]
	if !ok {
		l = new(sync.Mutex)
		s.locks[sessionId] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
