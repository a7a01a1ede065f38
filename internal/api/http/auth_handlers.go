package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/nav"
	"github.com/quizforge/quizforge/internal/rbac"
)

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(sessions *auth.SessionManager, tokens *auth.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		if !sessions.Login(req.Username, req.Password) {
			http.Error(w, "invalid username or password", http.StatusUnauthorized)
			return
		}
		acct, _ := sessions.Current()
		tok, err := tokens.Issue(acct)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": tok,
			"account":      acct,
		})
	}
}

func LogoutHandler(sessions *auth.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Logout()
		w.WriteHeader(http.StatusNoContent)
	}
}

// claimsSession adapts the request's token claims to the router's view of a
// session.
type claimsSession struct{ role string }

func (s claimsSession) IsAuthenticated() bool    { return s.role != "" }
func (s claimsSession) HasRole(r auth.Role) bool { return s.role == string(r) }

// GET /nav/{target} answers where the client should land, applying the role
// routing rules in one place instead of scattering them across views.
func NavHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := claimsSession{role: rbac.RoleFromContext(r.Context())}
		target := nav.View(chi.URLParam(r, "target"))
		writeJSON(w, http.StatusOK, map[string]string{
			"view": string(nav.Destination(sess, target)),
		})
	}
}
