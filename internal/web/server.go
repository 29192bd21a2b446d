package web

import (
	"net/http"

	"statshub-app/internal/auth"
	"statshub-app/internal/league"
	"statshub-app/internal/summary"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type Server struct {
	leagues   *league.Service
	profiles  *auth.Profiles
	summaries *summary.Service
	provider  auth.Provider
	// local is set when accounts are managed in process; it enables the
	// sign-up and sign-in endpoints.
	local          *auth.LocalProvider
	allowedOrigins []string
	secureCookies  bool
}

type Options struct {
	Leagues        *league.Service
	Profiles       *auth.Profiles
	Summaries      *summary.Service
	Provider       auth.Provider
	Local          *auth.LocalProvider
	AllowedOrigins []string
	SecureCookies  bool
}

func NewServer(opts Options) *Server {
	return &Server{
		leagues:        opts.Leagues,
		profiles:       opts.Profiles,
		summaries:      opts.Summaries,
		provider:       opts.Provider,
		local:          opts.Local,
		allowedOrigins: opts.AllowedOrigins,
		secureCookies:  opts.SecureCookies,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging, WithRecovery, WithMetrics)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/sign-up", s.handleSignUp)
	r.Post("/auth/sign-in", s.handleSignIn)

	r.Group(func(r chi.Router) {
		r.Use(s.WithSession)

		r.Post("/auth/sign-out", s.handleSignOut)
		r.Get("/me", s.handleMe)

		r.Get("/leagues", s.handleLeagueList)
		r.Post("/leagues", s.handleLeagueCreate)
		r.Route("/leagues/{leagueID}", func(r chi.Router) {
			r.Get("/", s.handleLeagueShow)
			r.Get("/standings", s.handleStandings)
			r.Get("/standings/from-results", s.handleStandingsFromResults)
			r.Post("/standings/recompute", s.handleRecompute)
			r.Get("/teams/names", s.handleTeamNames)
			r.Post("/teams", s.handleTeamCreate)
			r.Put("/teams/{teamID}/stats", s.handleTeamStatsUpdate)
			r.Get("/teams/{teamID}/summary", s.handleTeamSummary)
			r.Delete("/teams/{teamID}/summary", s.handleTeamSummaryReset)
			r.Get("/matches", s.handleMatchList)
			r.Post("/matches", s.handleMatchCreate)
			r.Put("/matches/{matchID}/score", s.handleMatchScoreUpdate)
			r.Delete("/matches/{matchID}", s.handleMatchDelete)
		})

		r.Get("/users", s.handleUserList)
		r.Put("/users/{uid}/role", s.handleUserRoleUpdate)
		r.Post("/admin/recompute", s.handleRecomputeAll)
	})

	return r
}
