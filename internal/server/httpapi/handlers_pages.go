package httpapi

import (
	"errors"
	"net/http"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/users"
)

type dashboardData struct {
	Profile   *users.Profile
	CSRFToken string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home.html", nil)
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "signin.html", nil)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "product.html", nil)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "error.html", nil)
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, view string) {
	p, _ := PrincipalFromContext(r.Context())

	profile, err := s.users.ProfileView(p.User)
	if err != nil {
		s.logger.Error(r.Context(), "building profile view", "user_id", p.User.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, view, dashboardData{Profile: profile, CSRFToken: p.CSRFToken})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, "dashboard.html")
}

func (s *Server) handleSuperDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, "super_dashboard.html")
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	update := users.ProfileUpdate{
		ScreenName: r.PostFormValue("screenName"),
		Email:      r.PostFormValue("email"),
		Bio:        r.PostFormValue("bio"),
	}

	err := s.users.UpdateProfile(r.Context(), p.User.ID, update)
	var verrs users.ValidationErrors
	switch {
	case err == nil:
		s.render(w, r, "profile_updated.html", update)
	case errors.As(err, &verrs):
		body := make([]map[string]string, 0, len(verrs))
		for _, fe := range verrs {
			body = append(body, map[string]string{"field": fe.Field, "message": fe.Message})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": body})
	case errors.Is(err, common.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		s.logger.Error(r.Context(), "profile update failed", "user_id", p.User.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
