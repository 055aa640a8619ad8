package memory

import (
	"sync"

	"medprep-quiz-service/internal/app"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*app.Session
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]*app.Session),
	}
}

func (s *AttemptStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[session.AttemptID()] = session
}

func (s *AttemptStore) Get(attemptID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.attempts[attemptID]
	return session, ok
}

func (s *AttemptStore) Delete(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
}
