package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/allenwoods/naive-coreterra/internal/services"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

type TokenVerifier interface {
	VerifyToken(token string) (services.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token claims in the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return requireAuth(verifier, false)
}

// RequireAuthOrQueryToken also accepts the token as ?token=, for calendar
// clients that cannot send headers.
func RequireAuthOrQueryToken(verifier TokenVerifier) func(http.Handler) http.Handler {
	return requireAuth(verifier, true)
}

func requireAuth(verifier TokenVerifier, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" && allowQuery {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				Unauthorized(w, "not authenticated")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				Unauthorized(w, services.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func Unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func GetClaims(ctx context.Context) (services.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(services.Claims)
	return claims, ok
}
