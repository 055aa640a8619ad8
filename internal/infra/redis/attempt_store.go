package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"medprep-quiz-service/internal/app"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - Live sessions stay in a local in-memory map; the state machine is
//     in-process and a websocket pins each attempt to one instance.
//   - Redis marks attempt liveness with a TTL so stale attempts age out and
//     operators can see open attempts across instances.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Session
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Session),
	}
}

func (s *AttemptStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[session.AttemptID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.AttemptID()), session.UserID(), s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(attemptID)).Err()
}

func (s *AttemptStore) key(attemptID string) string {
	return "quiz:attempt:" + attemptID
}
