// File: internal/infra/memory/session_store.go
package memory

import (
	"context"
	"sync"

	"receipt-desk-bot/internal/domain"
	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionRepository = (*SessionStore)(nil)

// SessionStore keeps sessions for the life of the process. Entries are never
// evicted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*model.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*model.Session)}
}

func (s *SessionStore) Get(_ context.Context, userID int64) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, sess *model.Session) error {
	if sess == nil || sess.UserID == 0 {
		return domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess.Clone()
	return nil
}

func (s *SessionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
