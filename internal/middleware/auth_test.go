package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundarvel/pawnbook/internal/config"
	"github.com/sundarvel/pawnbook/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "admin",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func guardedHandler() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := middleware.Auth(config.AuthConfig{JWTSecret: testSecret}, logger)
	return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuth_ValidTokenInHeader(t *testing.T) {
	h := guardedHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Hour))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_ValidTokenInCookie(t *testing.T) {
	h := guardedHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, testSecret, time.Hour)})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_Rejections(t *testing.T) {
	h := guardedHandler()

	tests := []struct {
		name    string
		prepare func(*http.Request)
	}{
		{"no token at all", func(r *http.Request) {}},
		{"wrong secret", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", time.Hour))
		}},
		{"expired token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, -time.Hour))
		}},
		{"malformed header", func(r *http.Request) {
			r.Header.Set("Authorization", "Token abc")
		}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.jwt")
		}},
		{"alg none", func(r *http.Request) {
			unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone,
				jwt.MapClaims{"sub": "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			r.Header.Set("Authorization", "Bearer "+unsigned)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
			tt.prepare(req)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
