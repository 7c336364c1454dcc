package model

import "time"

// User is an account that can log in and comment.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"`
	DateJoined   time.Time `json:"date_joined"`
}

// NewUser creates a User with the given name and an already hashed password.
func NewUser(username, passwordHash string) User {
	return User{
		Username:     username,
		PasswordHash: passwordHash,
		DateJoined:   time.Now().UTC(),
	}
}

// Public returns a copy of u without credentials, safe to render.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
