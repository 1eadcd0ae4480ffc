package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller, resolved from the request token.
type Identity struct {
	UserID   int64
	Username string
	IsAdmin  bool
}
