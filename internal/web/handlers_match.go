package web

import (
	"net/http"

	"statshub-app/internal/apperr"
	"statshub-app/internal/auth"
	"statshub-app/internal/league"

	"github.com/go-chi/chi/v5"
)

type scoreRequest struct {
	HomeScore *int `json:"homeScore"`
	AwayScore *int `json:"awayScore"`
}

func (s *Server) handleMatchList(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermView); !ok {
		return
	}
	filter, err := league.ParseMatchFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	matches, err := s.leagues.ListMatches(r.Context(), chi.URLParam(r, "leagueID"), filter, r.URL.Query().Get("team"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleMatchCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermManageMatches); !ok {
		return
	}
	var req league.NewMatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	match, err := s.leagues.AddMatch(r.Context(), chi.URLParam(r, "leagueID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, match)
}

func (s *Server) handleMatchScoreUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermRecordScore); !ok {
		return
	}
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.HomeScore == nil || req.AwayScore == nil {
		writeError(w, r, apperr.Validation("homeScore and awayScore are required"))
		return
	}
	match, err := s.leagues.UpdateScore(r.Context(), chi.URLParam(r, "leagueID"), chi.URLParam(r, "matchID"), *req.HomeScore, *req.AwayScore)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (s *Server) handleMatchDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermManageMatches); !ok {
		return
	}
	if err := s.leagues.DeleteMatch(r.Context(), chi.URLParam(r, "leagueID"), chi.URLParam(r, "matchID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
