package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/driftwood-collective/server/internal/domain/users"
)

type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]users.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]users.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Create(_ context.Context, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := s.byEmail[email]; taken {
		return users.ErrEmailTaken
	}
	s.byID[user.ID] = *user
	s.byEmail[email] = user.ID
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return &user, nil
}
