package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=1"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token and user info. The refresh
// token never appears in a response body; it travels only in the HTTP-only
// cookie set by the handler.
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         UserInfo `json:"user"`
	RefreshToken string   `json:"-"`
}

// RefreshResponse returns the renewed access token. RefreshToken carries the
// rotated cookie value for the handler only.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"-"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// AccessClaims is the JWT payload for access tokens.
type AccessClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the JWT payload for refresh tokens. Only the subject is
// carried; validity additionally requires textual equality with the value
// persisted on the user row.
type RefreshClaims struct {
	jwt.RegisteredClaims
}
