package models

import "time"

type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// PasswordResetToken is single-use: it is deleted when consumed.
type PasswordResetToken struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be consumed at now.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
