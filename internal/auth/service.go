package auth

import (
	"context"
	"strings"
	"time"

	"bookrack.org/internal/ids"
)

// Service exposes registration and login over a UserStore.
type Service struct {
	users UserStore
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(users UserStore, opts ...ServiceOption) *Service {
	svc := &Service{users: users, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register derives a fresh credential for the password and persists the new
// identity. ErrUserExists when the normalized username collides with an
// existing one.
func (s *Service) Register(ctx context.Context, username, password, firstName, lastName string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	hash, salt, err := CreateCredential(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credential and issues a bearer token. ErrUserNotFound
// and ErrWrongPassword are expected outcomes, not failures.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, err
	}
	if !VerifyCredential(password, u.PasswordHash, u.PasswordSalt) {
		return "", time.Time{}, ErrWrongPassword
	}
	return IssueToken(u.Username)
}
