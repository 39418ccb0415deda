package models

import "time"

// User is an account record. PasswordHash is a bcrypt hash; API handlers
// must respond with Sanitized, never the raw record.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
}

// Sanitized returns a copy safe for API responses.
func (u *User) Sanitized() User {
	out := *u
	out.PasswordHash = ""
	return out
}

// UserKeyValue is a per-user configuration entry.
type UserKeyValue struct {
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
