package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"inviteform/internal/shared/config"
	"inviteform/internal/shared/constants"
)

const tokenIssuer = "inviteform"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin login is not configured")
	ErrInvalidToken       = errors.New("invalid token")
)

type Service interface {
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
}

type service struct {
	jwt   config.JWTConfig
	admin config.AdminConfig
	now   func() time.Time
}

func NewService(cfg *config.Config) Service {
	return &service{
		jwt:   cfg.JWT,
		admin: cfg.Admin,
		now:   time.Now,
	}
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return nil, ErrAdminDisabled
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(s.admin.Email))) == 1

	// Always run bcrypt so a wrong email costs the same as a wrong password
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(req.Password))
	if !emailMatch || pwErr != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(email, constants.ROLE_ADMIN)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Email:       email,
		Role:        constants.ROLE_ADMIN,
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.JWTExpiresIn.Seconds()),
	}, nil
}

func (s *service) ValidateToken(tokenString string) (*JWTClaims, error) {
	return ParseAccessToken(tokenString, s.jwt.Secret)
}

func (s *service) generateAccessToken(email, role string) (string, error) {
	now := s.now()

	claims := JWTClaims{
		Email: email,
		Role:  role,
		Type:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.JWTExpiresIn)),
			Issuer:    tokenIssuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}

// ParseAccessToken verifies an HS256 access token signed with secret
func ParseAccessToken(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Type != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
