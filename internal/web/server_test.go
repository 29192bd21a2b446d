package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"statshub-app/internal/auth"
	"statshub-app/internal/events"
	"statshub-app/internal/league"
	"statshub-app/internal/model"
	"statshub-app/internal/store"
	"statshub-app/internal/summary"

	"github.com/jonboulle/clockwork"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, in summary.Input) (summary.Summary, error) {
	return summary.Summary{Summary: in.TeamName + " lead the table", ImprovementAreas: "Finishing"}, nil
}

type testApp struct {
	t       *testing.T
	handler http.Handler
}

func newTestApp(t *testing.T) (*testApp, string) {
	t.Helper()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore()
	local := auth.NewLocalProvider(st, clock, time.Hour)
	profiles := auth.NewProfiles(st, clock)

	owner, err := local.SignUp(ctx, "owner@example.com", "Password1", "Owner")
	if err != nil {
		t.Fatalf("sign up owner: %v", err)
	}
	if _, err := profiles.Bootstrap(ctx, owner); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	server := NewServer(Options{
		Leagues:        league.NewService(st, league.Options{Clock: clock, Publisher: &events.Recorder{}}),
		Profiles:       profiles,
		Summaries:      summary.NewService(stubGenerator{}, nil, nil),
		Provider:       local,
		Local:          local,
		AllowedOrigins: []string{"*"},
	})
	app := &testApp{t: t, handler: server.Routes()}

	var signedIn sessionResponse
	app.do(http.MethodPost, "/auth/sign-in", "", signInRequest{Email: "owner@example.com", Password: "Password1"}, http.StatusOK, &signedIn)
	if signedIn.Profile.Role != model.RoleCreator {
		t.Fatalf("expected creator profile, got %+v", signedIn.Profile)
	}
	return app, signedIn.Token
}

func (a *testApp) do(method, path, token string, body any, wantStatus int, out any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		a.t.Fatalf("%s %s: status %d, want %d (body %s)", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			a.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
}

func TestStandingsFlow(t *testing.T) {
	app, owner := newTestApp(t)

	var l model.League
	app.do(http.MethodPost, "/leagues", owner, createLeagueRequest{Name: "Sunday League"}, http.StatusCreated, &l)

	var red, blue model.Team
	app.do(http.MethodPost, "/leagues/"+l.ID+"/teams", owner, createTeamRequest{Name: "Blue"}, http.StatusCreated, &blue)
	app.do(http.MethodPost, "/leagues/"+l.ID+"/teams", owner, createTeamRequest{Name: "Red"}, http.StatusCreated, &red)
	if blue.Rank != 1 || red.Rank != 2 {
		t.Fatalf("unexpected provisional ranks blue=%d red=%d", blue.Rank, red.Rank)
	}
	app.do(http.MethodPost, "/leagues/"+l.ID+"/teams", owner, createTeamRequest{Name: "R"}, http.StatusBadRequest, nil)

	var updated model.Team
	app.do(http.MethodPut, "/leagues/"+l.ID+"/teams/"+red.ID+"/stats", owner, map[string]int{
		"played": 3, "won": 2, "drawn": 1, "lost": 0, "goalsScored": 7, "goalsConceded": 2,
	}, http.StatusOK, &updated)
	if updated.Points != 7 || updated.GoalDifference != 5 {
		t.Fatalf("unexpected stats %+v", updated)
	}
	app.do(http.MethodPut, "/leagues/"+l.ID+"/teams/"+red.ID+"/stats", owner, map[string]int{"played": 1, "won": 2}, http.StatusBadRequest, nil)

	var table []model.Team
	app.do(http.MethodPost, "/leagues/"+l.ID+"/standings/recompute", owner, nil, http.StatusOK, &table)
	app.do(http.MethodGet, "/leagues/"+l.ID+"/standings", owner, nil, http.StatusOK, &table)
	if len(table) != 2 || table[0].Name != "Red" || table[0].Rank != 1 || table[1].Name != "Blue" || table[1].Rank != 2 {
		t.Fatalf("unexpected standings %+v", table)
	}

	var names []string
	app.do(http.MethodGet, "/leagues/"+l.ID+"/teams/names", owner, nil, http.StatusOK, &names)
	if len(names) != 2 {
		t.Fatalf("unexpected names %v", names)
	}

	var s summary.Summary
	app.do(http.MethodGet, "/leagues/"+l.ID+"/teams/"+red.ID+"/summary", owner, nil, http.StatusOK, &s)
	if s.Summary != "Red lead the table" {
		t.Fatalf("unexpected summary %+v", s)
	}
	var reset map[string]int
	app.do(http.MethodDelete, "/leagues/"+l.ID+"/teams/"+red.ID+"/summary", owner, nil, http.StatusOK, &reset)
	if reset["removed"] != 1 {
		t.Fatalf("expected one cached summary removed, got %v", reset)
	}

	app.do(http.MethodGet, "/leagues/missing/standings", owner, nil, http.StatusNotFound, nil)
}

func TestMatchesFlow(t *testing.T) {
	app, owner := newTestApp(t)
	var l model.League
	app.do(http.MethodPost, "/leagues", owner, createLeagueRequest{Name: "Sunday League"}, http.StatusCreated, &l)

	var m model.Match
	app.do(http.MethodPost, "/leagues/"+l.ID+"/matches", owner, league.NewMatch{
		HomeTeam: "Red", AwayTeam: "Blue", Location: "North Park", Date: "2026-10-25", Time: "15:00",
	}, http.StatusCreated, &m)
	app.do(http.MethodPost, "/leagues/"+l.ID+"/matches", owner, league.NewMatch{
		HomeTeam: "Red", AwayTeam: "RED", Location: "North Park", Date: "2026-10-25", Time: "15:00",
	}, http.StatusBadRequest, nil)

	var upcoming []model.Match
	app.do(http.MethodGet, "/leagues/"+l.ID+"/matches?status=upcoming", owner, nil, http.StatusOK, &upcoming)
	if len(upcoming) != 1 || upcoming[0].ID != m.ID {
		t.Fatalf("unexpected upcoming %+v", upcoming)
	}
	app.do(http.MethodGet, "/leagues/"+l.ID+"/matches?status=later", owner, nil, http.StatusBadRequest, nil)

	app.do(http.MethodPut, "/leagues/"+l.ID+"/matches/"+m.ID+"/score", owner, map[string]int{"homeScore": -1, "awayScore": 0}, http.StatusBadRequest, nil)
	app.do(http.MethodPut, "/leagues/"+l.ID+"/matches/"+m.ID+"/score", owner, map[string]int{"homeScore": 1}, http.StatusBadRequest, nil)
	var scored model.Match
	app.do(http.MethodPut, "/leagues/"+l.ID+"/matches/"+m.ID+"/score", owner, map[string]int{"homeScore": 2, "awayScore": 1}, http.StatusOK, &scored)
	if !scored.HasResult() || *scored.HomeScore != 2 {
		t.Fatalf("unexpected scored match %+v", scored)
	}

	var results []model.Match
	app.do(http.MethodGet, "/leagues/"+l.ID+"/matches?status=results", owner, nil, http.StatusOK, &results)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %+v", results)
	}

	app.do(http.MethodDelete, "/leagues/"+l.ID+"/matches/"+m.ID, owner, nil, http.StatusNoContent, nil)
	app.do(http.MethodDelete, "/leagues/"+l.ID+"/matches/"+m.ID, owner, nil, http.StatusNotFound, nil)
}

func TestRoleEnforcement(t *testing.T) {
	app, owner := newTestApp(t)
	app.do(http.MethodGet, "/leagues", "", nil, http.StatusUnauthorized, nil)
	app.do(http.MethodGet, "/leagues", "not-a-token", nil, http.StatusUnauthorized, nil)

	var viewer sessionResponse
	app.do(http.MethodPost, "/auth/sign-up", "", signUpRequest{Email: "fan@example.com", Password: "Password1", DisplayName: "Fan"}, http.StatusCreated, &viewer)
	if viewer.Profile.Role != model.RoleViewer {
		t.Fatalf("expected new user to be a viewer, got %+v", viewer.Profile)
	}

	var l model.League
	app.do(http.MethodPost, "/leagues", owner, createLeagueRequest{Name: "Sunday League"}, http.StatusCreated, &l)
	var team model.Team
	app.do(http.MethodPost, "/leagues/"+l.ID+"/teams", owner, createTeamRequest{Name: "Red"}, http.StatusCreated, &team)

	app.do(http.MethodGet, "/leagues/"+l.ID+"/standings", viewer.Token, nil, http.StatusOK, nil)
	app.do(http.MethodPost, "/leagues", viewer.Token, createLeagueRequest{Name: "Fan League"}, http.StatusForbidden, nil)
	app.do(http.MethodPost, "/leagues/"+l.ID+"/teams", viewer.Token, createTeamRequest{Name: "Blue"}, http.StatusForbidden, nil)
	app.do(http.MethodPost, "/leagues/"+l.ID+"/standings/recompute", viewer.Token, nil, http.StatusForbidden, nil)
	app.do(http.MethodGet, "/users", viewer.Token, nil, http.StatusForbidden, nil)

	var me model.UserProfile
	app.do(http.MethodGet, "/me", viewer.Token, nil, http.StatusOK, &me)
	var promoted model.UserProfile
	app.do(http.MethodPut, "/users/"+me.UID+"/role", owner, roleRequest{Role: model.RoleMember}, http.StatusOK, &promoted)
	if promoted.Role != model.RoleMember {
		t.Fatalf("expected member, got %+v", promoted)
	}

	app.do(http.MethodPut, "/leagues/"+l.ID+"/teams/"+team.ID+"/stats", viewer.Token, map[string]int{"played": 1, "won": 1}, http.StatusOK, nil)
	app.do(http.MethodPost, "/leagues/"+l.ID+"/standings/recompute", viewer.Token, nil, http.StatusOK, nil)
	app.do(http.MethodPost, "/leagues/"+l.ID+"/teams", viewer.Token, createTeamRequest{Name: "Blue"}, http.StatusForbidden, nil)

	var ownerProfile model.UserProfile
	app.do(http.MethodGet, "/me", owner, nil, http.StatusOK, &ownerProfile)
	app.do(http.MethodPut, "/users/"+ownerProfile.UID+"/role", owner, roleRequest{Role: model.RoleViewer}, http.StatusBadRequest, nil)

	var users []model.UserProfile
	app.do(http.MethodGet, "/users", owner, nil, http.StatusOK, &users)
	if len(users) != 2 {
		t.Fatalf("expected two users, got %+v", users)
	}

	var results []league.RecomputeResult
	app.do(http.MethodPost, "/admin/recompute", owner, nil, http.StatusOK, &results)
	if len(results) != 1 || results[0].LeagueID != l.ID {
		t.Fatalf("unexpected recompute results %+v", results)
	}

	app.do(http.MethodPost, "/auth/sign-out", viewer.Token, nil, http.StatusNoContent, nil)
	app.do(http.MethodGet, "/me", viewer.Token, nil, http.StatusUnauthorized, nil)
}

func TestPublicEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	app.do(http.MethodGet, "/healthz", "", nil, http.StatusOK, nil)
	app.do(http.MethodPost, "/auth/sign-in", "", signInRequest{Email: "owner@example.com", Password: "wrong"}, http.StatusUnauthorized, nil)
	app.do(http.MethodPost, "/auth/sign-in", "", map[string]string{"username": "owner"}, http.StatusBadRequest, nil)
}

func TestUnknownRouteIsNotFoundWithoutSession(t *testing.T) {
	app, token := newTestApp(t)
	app.do(http.MethodGet, "/no-such-route", "", nil, http.StatusNotFound, nil)
	app.do(http.MethodGet, "/no-such-route", token, nil, http.StatusNotFound, nil)
	app.do(http.MethodGet, "/leagues", "", nil, http.StatusUnauthorized, nil)
	app.do(http.MethodGet, "/metrics", "", nil, http.StatusOK, nil)
}
