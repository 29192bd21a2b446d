package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"statshub-app/internal/apperr"
	"statshub-app/internal/model"
)

func newTestStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	sqlite, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "statshub.db"), SQLiteOptions{})
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func createLeagueWithTeams(t *testing.T, st Store, names ...string) (model.League, []model.Team) {
	t.Helper()
	ctx := context.Background()
	league, err := st.CreateLeague(ctx, model.League{Name: "Sunday League"})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	teams := make([]model.Team, 0, len(names))
	for i, name := range names {
		team, err := st.CreateTeam(ctx, model.Team{LeagueID: league.ID, Name: name, Rank: i + 1})
		if err != nil {
			t.Fatalf("create team %s: %v", name, err)
		}
		teams = append(teams, team)
	}
	return league, teams
}

func TestLeagueScopedTeams(t *testing.T) {
	for name, st := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			league, teams := createLeagueWithTeams(t, st, "Red", "Blue")
			other, _ := createLeagueWithTeams(t, st, "Green")

			count, err := st.CountTeams(ctx, league.ID)
			if err != nil || count != 2 {
				t.Fatalf("expected 2 teams, got %d (%v)", count, err)
			}
			if _, err := st.GetTeam(ctx, other.ID, teams[0].ID); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found across leagues, got %v", err)
			}
			if _, err := st.GetLeague(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected league not found, got %v", err)
			}
			if _, err := st.CreateTeam(ctx, model.Team{LeagueID: "missing", Name: "Ghost"}); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected team in missing league to fail, got %v", err)
			}
		})
	}
}

func TestUpdateTeamStatsKeepsRank(t *testing.T) {
	for name, st := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			league, teams := createLeagueWithTeams(t, st, "Red", "Blue")
			red := teams[0]
			red.Played, red.Won, red.Drawn = 3, 2, 1
			red.GoalsScored, red.GoalsConceded = 7, 2
			red.GoalDifference, red.Points = 5, 7
			red.Rank = 9
			if err := st.UpdateTeamStats(ctx, red); err != nil {
				t.Fatalf("update stats: %v", err)
			}
			got, err := st.GetTeam(ctx, league.ID, red.ID)
			if err != nil {
				t.Fatalf("get team: %v", err)
			}
			if got.Points != 7 || got.GoalDifference != 5 || got.Rank != 1 {
				t.Fatalf("unexpected team after update: %+v", got)
			}

			red.ID = "missing"
			if err := st.UpdateTeamStats(ctx, red); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestApplyRanksIsAllOrNothing(t *testing.T) {
	for name, st := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			league, teams := createLeagueWithTeams(t, st, "Red", "Blue", "Green")

			err := st.ApplyRanks(ctx, league.ID, map[string]int{
				teams[0].ID: 3,
				teams[1].ID: 2,
				"missing":   1,
			})
			if !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found for bogus team, got %v", err)
			}
			for i, team := range teams {
				got, err := st.GetTeam(ctx, league.ID, team.ID)
				if err != nil {
					t.Fatalf("get team: %v", err)
				}
				if got.Rank != i+1 {
					t.Fatalf("team %s rank changed to %d after failed batch", team.Name, got.Rank)
				}
			}

			err = st.ApplyRanks(ctx, league.ID, map[string]int{teams[0].ID: 3, teams[1].ID: 1, teams[2].ID: 2})
			if err != nil {
				t.Fatalf("apply ranks: %v", err)
			}
			listed, err := st.ListTeams(ctx, league.ID)
			if err != nil {
				t.Fatalf("list teams: %v", err)
			}
			if listed[0].Name != "Blue" || listed[1].Name != "Green" || listed[2].Name != "Red" {
				t.Fatalf("expected teams ordered by rank, got %+v", listed)
			}
		})
	}
}

func TestMatchLifecycle(t *testing.T) {
	for name, st := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			league, _ := createLeagueWithTeams(t, st, "Red", "Blue")
			kickoff := time.Date(2026, 5, 3, 15, 0, 0, 0, time.UTC)

			late, err := st.CreateMatch(ctx, model.Match{LeagueID: league.ID, HomeTeam: "Red", AwayTeam: "Blue", Location: "North Park", DateTime: kickoff.Add(48 * time.Hour)})
			if err != nil {
				t.Fatalf("create match: %v", err)
			}
			early, err := st.CreateMatch(ctx, model.Match{LeagueID: league.ID, HomeTeam: "Blue", AwayTeam: "Red", Location: "East Arena", DateTime: kickoff})
			if err != nil {
				t.Fatalf("create match: %v", err)
			}

			matches, err := st.ListMatches(ctx, league.ID)
			if err != nil {
				t.Fatalf("list matches: %v", err)
			}
			if len(matches) != 2 || matches[0].ID != early.ID || !matches[0].DateTime.Equal(kickoff) {
				t.Fatalf("expected matches ordered by kickoff, got %+v", matches)
			}
			if matches[0].HasResult() {
				t.Fatalf("new match should have no score")
			}

			if err := st.UpdateMatchScore(ctx, league.ID, late.ID, 2, 0); err != nil {
				t.Fatalf("update score: %v", err)
			}
			got, err := st.GetMatch(ctx, league.ID, late.ID)
			if err != nil {
				t.Fatalf("get match: %v", err)
			}
			if !got.HasResult() || *got.HomeScore != 2 || *got.AwayScore != 0 {
				t.Fatalf("unexpected score: %+v", got)
			}

			if err := st.UpdateMatchScore(ctx, "other", late.ID, 1, 1); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found for wrong league, got %v", err)
			}
			if err := st.DeleteMatch(ctx, league.ID, early.ID); err != nil {
				t.Fatalf("delete match: %v", err)
			}
			if err := st.DeleteMatch(ctx, league.ID, early.ID); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found on second delete, got %v", err)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	for name, st := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created, err := st.CreateUser(ctx, model.UserProfile{UID: "u1", Email: "coach@example.com"})
			if err != nil {
				t.Fatalf("create user: %v", err)
			}
			if created.Role != model.RoleViewer {
				t.Fatalf("expected default role Viewer, got %s", created.Role)
			}
			if _, err := st.CreateUser(ctx, model.UserProfile{UID: "u1", Email: "again@example.com"}); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected duplicate user to fail validation, got %v", err)
			}
			if err := st.UpdateUserRole(ctx, "u1", model.RoleMember); err != nil {
				t.Fatalf("update role: %v", err)
			}
			got, err := st.GetUser(ctx, "u1")
			if err != nil || got.Role != model.RoleMember {
				t.Fatalf("expected Member, got %+v (%v)", got, err)
			}
			if err := st.UpdateUserRole(ctx, "nobody", model.RoleMember); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
			users, err := st.ListUsers(ctx)
			if err != nil || len(users) != 1 {
				t.Fatalf("expected one user, got %d (%v)", len(users), err)
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	for name, st := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created, err := st.CreateCredential(ctx, model.Credential{
				Email:        " Coach@Example.com ",
				DisplayName:  "Coach",
				PasswordHash: "hash",
			})
			if err != nil {
				t.Fatalf("create credential: %v", err)
			}
			if created.UID == "" || created.Email != "coach@example.com" {
				t.Fatalf("unexpected credential %+v", created)
			}
			if _, err := st.CreateCredential(ctx, model.Credential{Email: "coach@example.com", PasswordHash: "other"}); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected duplicate email to be rejected, got %v", err)
			}
			got, err := st.GetCredentialByEmail(ctx, "COACH@example.com")
			if err != nil {
				t.Fatalf("get credential: %v", err)
			}
			if got.UID != created.UID || got.PasswordHash != "hash" {
				t.Fatalf("expected %+v, got %+v", created, got)
			}
			if _, err := st.GetCredentialByEmail(ctx, "nobody@example.com"); !errors.Is(err, apperr.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	seeded, err := SeedDemo(ctx, st, now)
	if err != nil || !seeded {
		t.Fatalf("seed: %v %v", seeded, err)
	}
	leagues, _ := st.ListLeagues(ctx)
	teams, _ := st.ListTeams(ctx, leagues[0].ID)
	if len(teams) != 8 || teams[0].Name != "Dragons FC" || teams[0].Points != 25 || teams[7].Name != "Lions Pride" {
		t.Fatalf("unexpected seeded table: %+v", teams)
	}
	matches, _ := st.ListMatches(ctx, leagues[0].ID)
	if len(matches) != 6 || !matches[0].DateTime.After(now) {
		t.Fatalf("unexpected seeded fixtures: %+v", matches)
	}
	again, err := SeedDemo(ctx, st, now)
	if err != nil || again {
		t.Fatalf("expected second seed to be skipped, got %v %v", again, err)
	}
}
