package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/allenwoods/naive-coreterra/internal/metrics"
	"github.com/allenwoods/naive-coreterra/internal/middleware"
	"github.com/allenwoods/naive-coreterra/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	metrics     *metrics.Metrics
}

func NewAuthHandler(authService *services.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
}

func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, err, "")
		return
	}
	if request.Username == "" || request.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	identity, err := handler.authService.Authenticate(r.Context(), request.Username, request.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		handler.metrics.LoginAttempt("rejected")
		slog.Warn("rejected login", "username", request.Username)
		middleware.Unauthorized(w, "Incorrect username or password")
		return
	}
	if err != nil {
		handler.metrics.LoginAttempt("error")
		writeError(w, r, err, "")
		return
	}

	token, err := handler.authService.IssueToken(identity)
	if err != nil {
		handler.metrics.LoginAttempt("error")
		writeError(w, r, err, "")
		return
	}
	handler.metrics.LoginAttempt("ok")
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      identity.UserID,
	})
}

func (handler *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaims(r.Context())
	writeJSON(w, http.StatusOK, claims.Identity())
}
