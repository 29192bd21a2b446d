package web

import (
	"net/http"

	"statshub-app/internal/auth"
	"statshub-app/internal/model"

	"github.com/go-chi/chi/v5"
)

type roleRequest struct {
	Role model.Role `json:"role"`
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermManageUsers); !ok {
		return
	}
	users, err := s.profiles.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserRoleUpdate(w http.ResponseWriter, r *http.Request) {
	session, ok := require(w, r, auth.PermManageUsers)
	if !ok {
		return
	}
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := s.profiles.UpdateRole(r.Context(), session, chi.URLParam(r, "uid"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRecomputeAll(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermRecomputeAll); !ok {
		return
	}
	results, err := s.leagues.RecomputeAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
