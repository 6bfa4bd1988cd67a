package httpapi

import (
	"net/http"
	"time"
)

const (
	sessionCookieName = "session_token"
	stateCookieName   = "oauth_state"
)

// securityHeaders sets the baseline response headers on every request.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// cachePublic marks a read-only page as cacheable by shared caches.
func cachePublic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300, stale-while-revalidate=360")
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one structured log line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}

// withSession resolves the session cookie to a user and attaches a Principal
// to the request context. Requests without a valid session pass through
// anonymously; the gates below decide whether that is acceptable.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			clearCookie(w, sessionCookieName)
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.users.GetByID(r.Context(), sess.UserID)
		if err != nil {
			s.logger.Warn(r.Context(), "session resolved but user lookup failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		p := &Principal{User: user, Token: cookie.Value, CSRFToken: sess.CSRFToken}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// EnsureAuthenticated rejects anonymous requests by redirecting to /error.
func (s *Server) EnsureAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/error", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EnsureSuperUser admits only authenticated superusers; everyone else is
// redirected to /error.
func (s *Server) EnsureSuperUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || !p.User.IsSuperUser() {
			http.Redirect(w, r, "/error", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCSRF compares the submitted token (form field _csrf or the
// X-CSRF-Token header) against the session's CSRF token. It must run after
// an authentication gate so a principal is guaranteed to be present.
func (s *Server) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/error", http.StatusFound)
			return
		}
		submitted := r.Header.Get("X-CSRF-Token")
		if submitted == "" {
			submitted = r.PostFormValue("_csrf")
		}
		if submitted == "" || submitted != p.CSRFToken {
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
