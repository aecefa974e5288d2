package middleware

import (
	"context"
	"net/http"
	"strings"

	"iftarspot/backend/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the signed-in caller.
type Identity struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	val, ok := ctx.Value(identityKey).(Identity)
	return val, ok
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func identityFromClaims(claims *auth.AccessClaims) Identity {
	return Identity{UserID: claims.UserID, Email: claims.Email, Name: claims.Name, IsAdmin: claims.IsAdmin}
}

func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				http.Error(w, "missing Authorization", http.StatusUnauthorized)
				return
			}
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "invalid Authorization", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseAccessToken(secret, token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identityFromClaims(claims))))
		})
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is present and
// otherwise serves the request anonymously.
func OptionalAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if claims, err := auth.ParseAccessToken(secret, token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identityFromClaims(claims)))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
