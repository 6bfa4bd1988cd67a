package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/common"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/server/models"
)

type credentialsRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username and password are required"})
		return
	}

	if _, err := s.users.Register(r.Context(), req.Username, req.Password, req.Role); err != nil {
		s.logger.Error(r.Context(), "registration failed", "username", req.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error registering user"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully!"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	token, err := s.users.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful!", "token": token})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User not found"})
	case errors.Is(err, common.ErrUnauthorized):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
	default:
		s.logger.Error(r.Context(), "login failed", "username", req.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error logging in"})
	}
}
