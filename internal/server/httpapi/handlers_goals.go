package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// The goal endpoints are illustrative stubs: they echo the requested action
// without touching storage.

func (s *Server) handleGoalList(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "Showing wellness goals")
}

func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Showing steps for goal No.%s", chi.URLParam(r, "id"))
}

func (s *Server) handleGoalCreate(w http.ResponseWriter, r *http.Request) {
	var goal map[string]any
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		goal = map[string]any{}
	}
	encoded, _ := json.Marshal(goal)
	fmt.Fprintf(w, "Added new goal: %s", encoded)
}

func (s *Server) handleGoalFinish(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Goal No.%s finished, awesome!", chi.URLParam(r, "id"))
}

// handleUserProfileSample serves a static example payload. It is marked
// no-store so caches never hold what looks like per-user data.
func (s *Server) handleUserProfileSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]string{
		"username": "Austin Lin",
		"phone":    "825-754-7566",
	})
}
