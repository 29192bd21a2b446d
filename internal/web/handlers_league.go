package web

import (
	"net/http"

	"statshub-app/internal/auth"
	"statshub-app/internal/standings"

	"github.com/go-chi/chi/v5"
)

type createLeagueRequest struct {
	Name string `json:"name"`
}

type createTeamRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleLeagueList(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermView); !ok {
		return
	}
	leagues, err := s.leagues.ListLeagues(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leagues)
}

func (s *Server) handleLeagueCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermCreateLeague); !ok {
		return
	}
	var req createLeagueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	league, err := s.leagues.CreateLeague(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, league)
}

func (s *Server) handleLeagueShow(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermView); !ok {
		return
	}
	league, err := s.leagues.GetLeague(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, league)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermView); !ok {
		return
	}
	teams, err := s.leagues.Standings(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleStandingsFromResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermView); !ok {
		return
	}
	teams, err := s.leagues.TableFromResults(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermRecompute); !ok {
		return
	}
	teams, err := s.leagues.RecomputeRanks(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleTeamNames(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermView); !ok {
		return
	}
	names, err := s.leagues.TeamNames(r.Context(), chi.URLParam(r, "leagueID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleTeamCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermRegisterTeam); !ok {
		return
	}
	var req createTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	team, err := s.leagues.AddTeam(r.Context(), chi.URLParam(r, "leagueID"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleTeamStatsUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermUpdateStats); !ok {
		return
	}
	var counters standings.Counters
	if err := decodeJSON(r, &counters); err != nil {
		writeError(w, r, err)
		return
	}
	team, err := s.leagues.UpdateTeamStats(r.Context(), chi.URLParam(r, "leagueID"), chi.URLParam(r, "teamID"), counters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (s *Server) handleTeamSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermView); !ok {
		return
	}
	team, err := s.leagues.GetTeam(r.Context(), chi.URLParam(r, "leagueID"), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.summaries.ForTeam(r.Context(), team)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTeamSummaryReset(w http.ResponseWriter, r *http.Request) {
	if _, ok := require(w, r, auth.PermUpdateStats); !ok {
		return
	}
	team, err := s.leagues.GetTeam(r.Context(), chi.URLParam(r, "leagueID"), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": s.summaries.Invalidate(team.ID)})
}
