package auth

import "time"

// Config drives the admin session.
type Config struct {
	// Password is compared in constant time; PasswordHash (bcrypt) wins when
	// both are set.
	Password     string
	PasswordHash string
	Secret       string
	SessionTTL   time.Duration
}

// LoginRequest captures the admin login form.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse returns the signed session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are extracted from a session token.
type Claims struct {
	Subject   string
	SessionID string
	TokenType string
	ExpiresAt time.Time
}
