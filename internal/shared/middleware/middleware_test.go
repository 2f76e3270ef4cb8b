package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inviteform/internal/shared/config"
	"inviteform/internal/shared/constants"
	"inviteform/pkg/logger"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func adminEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", JWTAuthWithConfig(cfg), RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.CTX_USER_EMAIL))
	})
	return engine
}

func TestJWTAuth_AdminAccess(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "k"}}
	engine := adminEngine(cfg)
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other", jwt.MapClaims{"type": "access", "role": "ADMIN", "exp": exp}), http.StatusUnauthorized},
		{"refresh type", "Bearer " + signToken(t, "k", jwt.MapClaims{"type": "refresh", "role": "ADMIN", "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, "k", jwt.MapClaims{"type": "access", "role": "ADMIN", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"not admin", "Bearer " + signToken(t, "k", jwt.MapClaims{"type": "access", "role": "GUEST", "exp": exp}), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, "k", jwt.MapClaims{"type": "access", "role": "ADMIN", "email": "a@b.co", "exp": exp}), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.CTX_REQUEST_ID))
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRequestLogger_CarriesRequestID(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	engine := gin.New()
	engine.Use(RequestID(), RequestLogger(logger.NewWithWriter(&buf, "info")))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.GET("/fail", func(c *gin.Context) {
		c.Error(errors.New("boom"))
		c.Status(http.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	engine.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"msg":"HTTP Request"`)

	buf.Reset()
	req = httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("X-Request-ID", "req-2")
	engine.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), `"request_id":"req-2"`)
	assert.Contains(t, buf.String(), `"msg":"HTTP Error"`)
}
