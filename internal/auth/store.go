package auth

import (
	"context"
	"strings"
	"time"
)

// User is a registered identity. The credential is stored as a (hash, salt)
// pair; the plaintext password never persists. Credentials are immutable
// after registration.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	PasswordSalt []byte    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeUsername folds a username for uniqueness comparison: surrounding
// whitespace is ignored and case is insensitive.
func NormalizeUsername(username string) string {
	return strings.ToUpper(strings.TrimSpace(username))
}

// UserStore persists identities. Uniqueness is enforced over the normalized
// username.
type UserStore interface {
	// Create inserts a new user; ErrUserExists on a normalized-name collision.
	Create(ctx context.Context, u *User) error
	// FindByUsername looks a user up by normalized username; ErrUserNotFound
	// if absent.
	FindByUsername(ctx context.Context, username string) (*User, error)
}
