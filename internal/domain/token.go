package domain

import (
	"errors"
	"time"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

type SignedToken struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

type LoginResponse struct {
	Token      string    `json:"token"`
	Expiry     time.Time `json:"expiry"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
}
