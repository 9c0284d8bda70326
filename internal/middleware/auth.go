package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sundarvel/pawnbook/internal/config"
	"github.com/sundarvel/pawnbook/pkg/response"
)

const accessTokenCookie = "access_token"

// Auth guards the API routes with the bearer JWT issued at login. The token
// is read from the Authorization header or, failing that, the access_token
// cookie. A missing or invalid token is a 401, which is the client's sole
// signal to drop its token and return to the login view.
func Auth(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logger.Warn("auth: missing token", slog.String("path", r.URL.Path))
				response.Unauthorized(w, "missing access token")
				return
			}

			if !validateJWT(token, cfg.JWTSecret, logger) {
				response.Unauthorized(w, "invalid or expired access token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func validateJWT(tokenString, secret string, logger *slog.Logger) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		logger.Warn("auth: token rejected", slog.Any("error", err))
		return false
	}
	return true
}
