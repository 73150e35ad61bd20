package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to the current user record.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// JWTAuth returns middleware that validates a Bearer token from the Authorization header
// and attaches the authenticated user to the request context.
func JWTAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				logger.ErrorContext(r.Context(), "authenticating request", "error", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
