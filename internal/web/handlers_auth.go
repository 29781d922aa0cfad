package web

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/web/middleware"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.authn.LoginURL(safeRedirect(r.URL.Query().Get("redirect_to"))), http.StatusSeeOther)
}

// handleAuthCallback receives the access token the provider hands back after
// sign-in and turns it into a session cookie.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("access_token")
	principal, claims, err := s.authn.Verifier().Verify(token)
	if err != nil {
		s.logger.Info("rejected session handoff", zap.Error(err))
		http.Error(w, "Invalid or expired access token", http.StatusUnauthorized)
		return
	}

	expires := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	s.authn.SetSession(w, r, token, expires)
	s.logger.Info("signed in", zap.String("user_id", principal.UserID))

	http.Redirect(w, r, safeRedirect(r.FormValue("redirect_to")), http.StatusSeeOther)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.authn.ClearSession(w, r)
	if middleware.IsHTMX(r) {
		w.Header().Set("HX-Redirect", "/auth/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
