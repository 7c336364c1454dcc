package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

// ErrInvalidCredentials is returned when the username is unknown or the
// password does not match. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UsernameLookup finds a user by username.
type UsernameLookup interface {
	UserByUsername(ctx context.Context, username string) (model.User, error)
}

// Authenticate returns the user whose credentials match.
func Authenticate(ctx context.Context, users UsernameLookup, username, password string) (model.User, error) {
	u, err := users.UserByUsername(ctx, username)
	if err != nil {
		var nf *store.NotFoundError
		if errors.As(err, &nf) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}
