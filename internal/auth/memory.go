package auth

import (
	"context"
	"sync"
)

// InMemoryUsers implements UserStore for tests and DSN-less runs.
type InMemoryUsers struct {
	mu    sync.RWMutex
	users map[string]*User // normalized username -> user
}

// NewInMemoryUsers creates an empty store.
func NewInMemoryUsers() *InMemoryUsers {
	return &InMemoryUsers{users: make(map[string]*User)}
}

var _ UserStore = (*InMemoryUsers)(nil)

func (s *InMemoryUsers) Create(ctx context.Context, u *User) error {
	key := NormalizeUsername(u.Username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return ErrUserExists
	}
	stored := *u
	s.users[key] = &stored
	return nil
}

func (s *InMemoryUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	key := NormalizeUsername(username)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[key]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}
