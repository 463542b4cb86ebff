package authserverfake

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/oauth2"
	"golang.org/x/crypto/bcrypt"
)

// UserPublic is the profile returned by /auth/me
type UserPublic struct {
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	CN       string   `json:"cn,omitempty"`
	Groups   []string `json:"groups"`
	IsActive bool     `json:"is_active"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func (s *Server) PageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1></body></html>", title, title)
	}
}

// LoginHandler accepts a form encoded password grant
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid form data"})
			return
		}

		grantType := r.PostFormValue("grant_type")
		if grantType != "" && grantType != string(oauth2.PasswordGrantType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
			return
		}

		u, ok := s.user(r.PostFormValue("username"))
		if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(r.PostFormValue("password"))) != nil {
			unauthorized(w, "Incorrect username or password")
			return
		}
		if u.Inactive {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "User is blocked"})
			return
		}

		pair, err := s.IssuePair(u.Username)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

// RefreshHandler exchanges a refresh token for a new pair
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.RLock()
		forced := s.refreshStatus
		s.lock.RUnlock()
		if forced != 0 {
			writeJSON(w, forced, map[string]string{"detail": http.StatusText(forced)})
			return
		}

		var req oauth2.RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "refresh_token required"})
			return
		}

		claims, err := s.decode(req.RefreshToken, tokenTypeRefresh)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid refresh token"})
			return
		}

		username, _ := claims.GetSubject()
		pair, err := s.IssuePair(username)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, pair)
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value(ContextKeyUsername).(string)
		u, ok := s.user(username)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
			return
		}
		groups := u.Groups
		if groups == nil {
			groups = []string{}
		}
		writeJSON(w, http.StatusOK, UserPublic{
			Username: u.Username,
			Email:    u.Email,
			FullName: u.FullName,
			CN:       u.CN,
			Groups:   groups,
			IsActive: !u.Inactive,
		})
	}
}

func (s *Server) ItemsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value(ContextKeyUsername).(string)
		writeJSON(w, http.StatusOK, map[string]any{
			"owner": username,
			"items": []string{"alpha", "beta"},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
