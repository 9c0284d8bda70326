package handler

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sundarvel/pawnbook/internal/config"
	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/pkg/response"
)

// AccessTokenCookie is the cookie carrying the bearer token for clients that
// do not set an Authorization header.
const AccessTokenCookie = "access_token"

type AuthHandler struct {
	config    *config.Config
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAuthHandler(cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		config:    cfg,
		validator: validator.New(),
		logger:    logger.With(slog.String("component", "authHandler")),
	}
}

// Login verifies the operator credentials and issues a signed bearer token,
// also set as a cookie. There is no refresh flow; an expired token simply
// forces a new login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "username and password are required", err)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.config.Auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.config.Auth.Password)) == 1
	if !userOK || !passOK {
		h.logger.Warn("login rejected", slog.String("username", req.Username))
		response.Unauthorized(w, "invalid credentials")
		return
	}

	expiresAt := time.Now().Add(h.config.Auth.TokenTTL)
	claims := jwt.MapClaims{
		"sub": req.Username,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.config.Auth.JWTSecret))
	if err != nil {
		h.logger.Error("signing token", slog.Any("error", err))
		response.InternalServerError(w, "could not issue token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, domain.LoginResponse{Token: token, ExpiresAt: expiresAt})
}
