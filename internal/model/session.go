package model

import "time"

// User mirrors the 'users' table owned by the auth service.
type User struct {
	ID           string `json:"user_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the value handed back by Login and Refresh. Token is the signed
// access-token string; it is opaque to every caller but the auth service
// itself, matching spec's "(token: opaque string, user_id: string)".
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}
