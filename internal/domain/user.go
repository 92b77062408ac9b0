package domain

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateUser is returned when the username or the email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Position     *string   `json:"position"`
	Department   *string   `json:"department"`
	CreatedAt    time.Time `json:"createdAt"`
	IsActive     bool      `json:"isActive"`
}

// Identity is what a successful authentication hands to the token issuer.
type Identity struct {
	UserID     int64
	Name       string
	Department *string
	Position   *string
}

func (u *User) Identity() Identity {
	return Identity{
		UserID:     u.ID,
		Name:       u.Name,
		Department: u.Department,
		Position:   u.Position,
	}
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
