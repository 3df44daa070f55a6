package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/msomdec/library-catalog/internal/domain"
	"github.com/msomdec/library-catalog/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the resolved user from the request context.
// Returns nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// WithUser resolves the caller's identity from the Authorization header and
// injects it into the request context. A missing header, a non-bearer scheme,
// an invalid token, or a vanished user all leave the request anonymous rather
// than rejecting it; anonymous read access stays possible and each mutation
// does its own gating.
func WithUser(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := resolveUser(r, auth); user != nil {
			ctx := context.WithValue(r.Context(), userContextKey, user)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func resolveUser(r *http.Request, auth *service.AuthService) *domain.User {
	header := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return nil
	}

	userID, err := auth.ValidateToken(header[len(prefix):])
	if err != nil {
		return nil
	}

	user, err := auth.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

// SecurityHeaders sets a conservative set of response headers on every request.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
