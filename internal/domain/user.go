package domain

import "time"

// User represents a platform account. PasswordHash is never serialized; every
// read path returns the record with credentials already stripped.
type User struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"`
	IsAdmin      bool             `json:"is_admin"`
	CreatedAt    time.Time        `json:"created_at"`
	HighScores   map[string]int64 `json:"high_scores"`
}

// RegisterRequest represents a registration payload
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
