package memory

import (
	"context"
	"sync"
	"time"

	"github.com/driftwood-collective/server/internal/auth"
)

// SessionStore keeps sessions in memory. Expiry is enforced lazily:
// expired sessions are deleted when accessed, not by a sweeper.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
	flashes  map[string][]auth.Flash
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]auth.Session),
		flashes:  make(map[string][]auth.Flash),
	}
}

func (s *SessionStore) Create(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, auth.ErrNoSession
	}
	if session.Expired(time.Now()) {
		delete(s.sessions, id)
		delete(s.flashes, id)
		return nil, auth.ErrNoSession
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.flashes, id)
	return nil
}

func (s *SessionStore) PushFlash(_ context.Context, sessionID string, flash auth.Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes[sessionID] = append(s.flashes[sessionID], flash)
	return nil
}

func (s *SessionStore) PopFlashes(_ context.Context, sessionID string) ([]auth.Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flashes := s.flashes[sessionID]
	delete(s.flashes, sessionID)
	return flashes, nil
}
