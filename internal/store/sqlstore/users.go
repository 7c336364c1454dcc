package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

// CreateUser inserts a user. Usernames are unique.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	_, err := s.UserByUsername(ctx, u.Username)
	if err == nil {
		return model.User{}, &store.ConflictError{Message: fmt.Sprintf("user %q already exists", u.Username)}
	}
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		return model.User{}, err
	}

	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	id, err := s.insert(ctx,
		`INSERT INTO users (username, password_hash, date_joined) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, u.DateJoined)
	if err != nil {
		return model.User{}, fmt.Errorf("CreateUser: %w", err)
	}
	u.ID = id
	return u, nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.userWhere(ctx, "id = ?", id, fmt.Sprintf("user %d not found", id))
}

// UserByUsername returns a user by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.userWhere(ctx, "username = ?", username, fmt.Sprintf("user %q not found", username))
}

func (s *Store) userWhere(ctx context.Context, cond string, arg any, notFound string) (model.User, error) {
	query := `SELECT id, username, password_hash, date_joined FROM users WHERE ` + cond

	var u model.User
	err := s.db.QueryRowContext(ctx, s.rebind(query), arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DateJoined)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, &store.NotFoundError{Message: notFound}
	}
	if err != nil {
		return model.User{}, fmt.Errorf("userWhere: %w", err)
	}
	return u, nil
}
