package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/config"
)

func signToken(t *testing.T, secret, viewerID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"viewer_id": viewerID,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	m := NewMiddleware(&config.Config{JWTSecret: "secret"})
	rec := httptest.NewRecorder()

	m.AuthMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/api/calls", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	m := NewMiddleware(&config.Config{JWTSecret: "secret"})
	req := httptest.NewRequest("GET", "/api/calls", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "v-1"))
	rec := httptest.NewRecorder()

	m.AuthMiddleware(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	m := NewMiddleware(&config.Config{JWTSecret: "secret"})
	req := httptest.NewRequest("GET", "/ws?token="+signToken(t, "secret", "v-1"), nil)
	rec := httptest.NewRecorder()

	m.AuthMiddleware(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	m := NewMiddleware(&config.Config{JWTSecret: "secret"})
	req := httptest.NewRequest("GET", "/api/calls", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other", "v-1"))
	rec := httptest.NewRecorder()

	m.AuthMiddleware(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareBypassedWhenDisabled(t *testing.T) {
	m := NewMiddleware(&config.Config{JWTSecret: "secret", AuthDisabled: true})
	rec := httptest.NewRecorder()

	m.AuthMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/api/calls", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareBypassedWithoutSecret(t *testing.T) {
	m := NewMiddleware(&config.Config{})
	rec := httptest.NewRecorder()

	m.AuthMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/api/calls", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	m := NewMiddleware(&config.Config{AllowedOrigins: []string{"https://dash.example"}})
	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.Header.Set("Origin", "https://dash.example")
	rec := httptest.NewRecorder()

	m.CORS(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	m := NewMiddleware(&config.Config{AllowedOrigins: []string{"*"}})
	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()

	m.CORS(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, "https://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	m := NewMiddleware(&config.Config{AllowedOrigins: []string{"*"}})
	req := httptest.NewRequest("OPTIONS", "/api/stats", nil)
	req.Header.Set("Origin", "https://dash.example")
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	rec := httptest.NewRecorder()

	m.CORS(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}

func TestRateLimitMiddleware(t *testing.T) {
	m := NewMiddleware(&config.Config{})
	handler := m.RateLimitMiddleware(okHandler())

	for i := 0; i < 60; i++ {
		req := httptest.NewRequest("GET", "/api/stats", nil)
		req.RemoteAddr = "10.1.2.3:4444"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client is unaffected.
	req = httptest.NewRequest("GET", "/api/stats", nil)
	req.RemoteAddr = "10.9.9.9:4444"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogMiddlewarePreservesStatus(t *testing.T) {
	m := NewMiddleware(&config.Config{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "short and stout")
	})
	rec := httptest.NewRecorder()

	m.RequestLogMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
