package httpapi

import (
	"net/http"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
)

// handleGoogleRedirect starts the sign-in flow. The anti-forgery state is
// kept in a short-lived cookie and checked on the way back.
func (s *Server) handleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := common.MakeRandHexString(16)
	if err != nil {
		s.logger.Error(r.Context(), "generating state nonce", "error", err)
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		s.logger.Warn(r.Context(), "callback with missing or mismatched state")
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	clearCookie(w, stateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}

	info, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Error(r.Context(), "code exchange failed", "error", err)
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}

	user, err := s.identity.Resolve(r.Context(), info.Subject, info.Name)
	if err != nil {
		s.logger.Error(r.Context(), "identity resolution failed", "error", err)
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}

	established, err := s.sessions.Create(r.Context(), user.ID)
	if err != nil {
		s.logger.Error(r.Context(), "session creation failed", "error", err)
		http.Redirect(w, r, "/error", http.StatusFound)
		return
	}
	setSessionCookie(w, established.Token, established.ExpiresAt)

	if user.IsSuperUser() {
		http.Redirect(w, r, "/super-dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			s.logger.Warn(r.Context(), "destroying session", "error", err)
		}
	}
	clearCookie(w, sessionCookieName)
	http.Redirect(w, r, "/", http.StatusFound)
}
