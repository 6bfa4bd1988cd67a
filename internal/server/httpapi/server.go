// Package httpapi exposes the HTTP surface of the backend: page renders,
// the Google sign-in flow, the local JSON auth endpoints, profile updates
// and the goal stubs, together with the middleware gates protecting them.
package httpapi

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/logging"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/oauth"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/sessions"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/users"
)

//go:embed views/*.html
var viewFS embed.FS

// OAuthProvider abstracts the Google authorization-code flow.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.UserInfo, error)
}

// IdentityResolver turns a verified external identity into a local account.
type IdentityResolver interface {
	Resolve(ctx context.Context, googleID, displayName string) (*models.User, error)
}

// SessionManager owns the server-side session lifecycle.
type SessionManager interface {
	Create(ctx context.Context, userID string) (*sessions.Established, error)
	Resolve(ctx context.Context, token string) (*models.Session, error)
	Destroy(ctx context.Context, token string) error
}

// UserService covers local accounts and profile data.
type UserService interface {
	Register(ctx context.Context, username, password string, role models.Role) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	UpdateProfile(ctx context.Context, userID string, in users.ProfileUpdate) error
	ProfileView(user *models.User) (*users.Profile, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Server wires the application services to routes.
type Server struct {
	logger   logging.Logger
	oauth    OAuthProvider
	identity IdentityResolver
	sessions SessionManager
	users    UserService
	tmpl     *template.Template
}

func NewServer(oauthProvider OAuthProvider, identity IdentityResolver,
	sessionManager SessionManager, userService UserService, logger logging.Logger) *Server {
	return &Server{
		logger:   logger.With("module", "httpapi"),
		oauth:    oauthProvider,
		identity: identity,
		sessions: sessionManager,
		users:    userService,
		tmpl:     template.Must(template.ParseFS(viewFS, "views/*.html")),
	}
}

// Routes assembles the router. Paths are fixed; the browser pages sit
// behind the session middleware, the JSON auth endpoints and goal stubs do
// not use sessions at all.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(securityHeaders)
	r.Use(s.requestLogger)
	r.Use(s.withSession)

	r.With(cachePublic).Get("/", s.handleHome)
	r.Get("/signin", s.handleSignin)
	r.With(cachePublic).Get("/product", s.handleProduct)
	r.Get("/error", s.handleError)

	r.Get("/auth/google", s.handleGoogleRedirect)
	r.Get("/auth/google/callback", s.handleGoogleCallback)
	r.Get("/logout", s.handleLogout)

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.EnsureAuthenticated)
		r.Get("/dashboard", s.handleDashboard)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.EnsureSuperUser)
		r.Get("/super-dashboard", s.handleSuperDashboard)
		// TODO: the gate keeps regular users from editing their own
		// profile; /dashboard links here but only superusers get through.
		r.With(s.RequireCSRF).Post("/update-profile", s.handleUpdateProfile)
	})

	r.With(cachePublic).Get("/api/goals", s.handleGoalList)
	r.With(cachePublic).Get("/api/goals/{id}", s.handleGoalByID)
	r.Post("/api/goals", s.handleGoalCreate)
	r.Put("/api/goals/{id}/finish", s.handleGoalFinish)
	r.Get("/api/user-profile", s.handleUserProfileSample)

	return r
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error(r.Context(), "rendering template", "template", name, "error", err)
	}
}
