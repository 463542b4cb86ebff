package authserverfake

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUsername stores the authenticated username
const ContextKeyUsername ContextKey = "username"

// RequireAuth validates the Bearer access token in the Authorization header
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Not authenticated")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			unauthorized(w, "Invalid Authorization header format")
			return
		}

		claims, err := s.decode(parts[1], tokenTypeAccess)
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}

		username, _ := claims.GetSubject()
		if _, ok := s.user(username); !ok {
			unauthorized(w, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUsername, username)
		next(w, r.WithContext(ctx))
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detail})
}
