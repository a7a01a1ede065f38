package auth

import (
	"net/http"
	"strings"

	"github.com/quizforge/quizforge/internal/rbac"
)

// JWTMiddleware rejects requests without a valid bearer token and attaches
// the subject and role to the request context for RBAC checks downstream.
func JWTMiddleware(t *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			claims, err := t.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithSubject(r.Context(), claims.Sub)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWT attaches identity when a valid bearer token is present but lets
// anonymous requests through; the navigation endpoint serves both.
func OptionalJWT(t *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if strings.HasPrefix(h, "Bearer ") {
				if claims, err := t.Parse(strings.TrimPrefix(h, "Bearer ")); err == nil {
					ctx := rbac.WithSubject(r.Context(), claims.Sub)
					ctx = rbac.WithRole(ctx, claims.Role)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
