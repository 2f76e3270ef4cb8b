package auth

import (
	"github.com/golang-jwt/jwt/v4"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// JWTClaims represents JWT token claims
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"type"` // always "access"
	jwt.RegisteredClaims
}
