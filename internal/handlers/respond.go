package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/allenwoods/naive-coreterra/internal/middleware"
	"github.com/allenwoods/naive-coreterra/internal/models"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/allenwoods/naive-coreterra/internal/services"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		middleware.Unauthorized(w, err.Error())
	case errors.Is(err, services.ErrInsufficientGold):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Not enough gold"})
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, errMalformedBody),
		errors.Is(err, services.ErrTaskAlreadyCompleted),
		errors.Is(err, repository.ErrUsernameTaken):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("handling request", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errMalformedBody, name)
	}
	return value, nil
}

// currentUserID returns the caller's user id. Routes are always mounted
// behind RequireAuth, so the claims are present.
func currentUserID(r *http.Request) int64 {
	claims, _ := middleware.GetClaims(r.Context())
	return claims.UserID
}
