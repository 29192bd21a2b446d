package store

import (
	"context"
	"fmt"
	"time"

	"statshub-app/internal/model"
	"statshub-app/internal/standings"
)

type seedTeam struct {
	name     string
	counters standings.Counters
}

var demoTeams = []seedTeam{
	{"Dragons FC", standings.Counters{Played: 10, Won: 8, Drawn: 1, Lost: 1, GoalsScored: 25, GoalsConceded: 5}},
	{"Warriors United", standings.Counters{Played: 10, Won: 7, Drawn: 2, Lost: 1, GoalsScored: 20, GoalsConceded: 8}},
	{"Titans AFC", standings.Counters{Played: 10, Won: 6, Drawn: 1, Lost: 3, GoalsScored: 15, GoalsConceded: 10}},
	{"Eagles SC", standings.Counters{Played: 10, Won: 5, Drawn: 3, Lost: 2, GoalsScored: 18, GoalsConceded: 12}},
	{"Phoenix Rising", standings.Counters{Played: 10, Won: 4, Drawn: 2, Lost: 4, GoalsScored: 12, GoalsConceded: 15}},
	{"Cobras FC", standings.Counters{Played: 10, Won: 3, Drawn: 2, Lost: 5, GoalsScored: 10, GoalsConceded: 18}},
	{"Sharks Athletic", standings.Counters{Played: 10, Won: 2, Drawn: 1, Lost: 7, GoalsScored: 8, GoalsConceded: 22}},
	{"Lions Pride", standings.Counters{Played: 10, Won: 0, Drawn: 2, Lost: 8, GoalsScored: 5, GoalsConceded: 23}},
}

var demoFixtures = []struct {
	home, away, location string
	days                 int
}{
	{"Dragons FC", "Warriors United", "Central Stadium", 7},
	{"Titans AFC", "Eagles SC", "North Park", 7},
	{"Phoenix Rising", "Cobras FC", "East Arena", 8},
	{"Sharks Athletic", "Lions Pride", "West Field", 8},
	{"Dragons FC", "Titans AFC", "Central Stadium", 14},
	{"Warriors United", "Eagles SC", "North Park", 14},
}

// SeedDemo fills an empty store with one league, eight ranked teams and a
// fixture list starting a week after now. A store that already holds a
// league is left alone and seeded reports false.
func SeedDemo(ctx context.Context, st Store, now time.Time) (seeded bool, err error) {
	leagues, err := st.ListLeagues(ctx)
	if err != nil {
		return false, err
	}
	if len(leagues) > 0 {
		return false, nil
	}
	league, err := st.CreateLeague(ctx, model.League{Name: "Sunday League", CreatedAt: now.UTC()})
	if err != nil {
		return false, fmt.Errorf("seed league: %w", err)
	}

	teams := make([]model.Team, 0, len(demoTeams))
	for _, seed := range demoTeams {
		team, err := standings.Apply(model.Team{LeagueID: league.ID, Name: seed.name}, seed.counters)
		if err != nil {
			return false, fmt.Errorf("seed team %s: %w", seed.name, err)
		}
		teams = append(teams, team)
	}
	ranked, _ := standings.AssignRanks(teams)
	for _, team := range ranked {
		if _, err := st.CreateTeam(ctx, team); err != nil {
			return false, fmt.Errorf("seed team %s: %w", team.Name, err)
		}
	}

	kickoff := time.Date(now.Year(), now.Month(), now.Day(), 15, 0, 0, 0, time.UTC)
	for _, f := range demoFixtures {
		_, err := st.CreateMatch(ctx, model.Match{
			LeagueID: league.ID,
			HomeTeam: f.home,
			AwayTeam: f.away,
			Location: f.location,
			DateTime: kickoff.AddDate(0, 0, f.days),
		})
		if err != nil {
			return false, fmt.Errorf("seed match %s v %s: %w", f.home, f.away, err)
		}
	}
	return true, nil
}
