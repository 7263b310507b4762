package pg

import (
	"context"
	"database/sql"
	"errors"

	"bookrack.org/internal/auth"
	"bookrack.org/internal/catalog"
)

// userStore implements auth.UserStore on the shared pool.
type userStore struct {
	db *sql.DB
}

// Users returns the identity store backed by this connection pool.
func (s *Store) Users() auth.UserStore {
	return &userStore{db: s.db}
}

func (u *userStore) Create(ctx context.Context, user *auth.User) error {
	_, err := u.db.ExecContext(ctx, `
		insert into users(id, username, username_norm, password_hash, password_salt, first_name, last_name, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, user.ID, user.Username, auth.NormalizeUsername(user.Username),
		user.PasswordHash, user.PasswordSalt, user.FirstName, user.LastName, user.CreatedAt)
	if err := mapUniqueViolation(err); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			return auth.ErrUserExists
		}
		return err
	}
	return nil
}

func (u *userStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	var user auth.User
	err := u.db.QueryRowContext(ctx, `
		select id, username, password_hash, password_salt, first_name, last_name, created_at
		from users where username_norm = $1
	`, auth.NormalizeUsername(username)).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.PasswordSalt,
		&user.FirstName, &user.LastName, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
