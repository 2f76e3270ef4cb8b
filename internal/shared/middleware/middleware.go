package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"inviteform/internal/shared/config"
	"inviteform/internal/shared/constants"
	"inviteform/internal/shared/utils/response"
	"inviteform/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondError(c, http.StatusUnauthorized, "Authorization header is required", nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondError(c, http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondError(c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondError(c, http.StatusUnauthorized, "invalid token claims", nil)
			c.Abort()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondError(c, http.StatusUnauthorized, "invalid token type", nil)
			c.Abort()
			return
		}

		c.Set(constants.CTX_USER_EMAIL, claims["email"])
		c.Set(constants.CTX_USER_ROLE, claims["role"])

		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(constants.CTX_USER_ROLE)
		if !exists {
			response.RespondError(c, http.StatusUnauthorized, "user role not found in context", nil)
			c.Abort()
			return
		}

		if role, _ := userRole.(string); role != requiredRole {
			response.RespondError(c, http.StatusForbidden, "Insufficient permissions", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(constants.ROLE_ADMIN)
}

// RequestID reuses an incoming X-Request-ID or mints a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(constants.CTX_REQUEST_ID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request once it completes
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		reqLog := log.WithRequestID(c.GetString(constants.CTX_REQUEST_ID))
		if len(c.Errors) > 0 {
			reqLog.LogHTTPError(c, c.Errors.Last(), c.Writer.Status())
			return
		}
		reqLog.LogHTTPRequest(c, duration)
	}
}
