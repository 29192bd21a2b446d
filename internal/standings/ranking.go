package standings

import (
	"cmp"
	"slices"
	"strings"

	"statshub-app/internal/model"
)

// Compare orders teams by points, goal difference and goals scored (all
// descending), then by name in byte order. Identical names fall back to ID
// so the order is total.
func Compare(a, b model.Team) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.GoalDifference, a.GoalDifference); c != 0 {
		return c
	}
	if c := cmp.Compare(b.GoalsScored, a.GoalsScored); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Sort returns a sorted copy of teams.
func Sort(teams []model.Team) []model.Team {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, Compare)
	return sorted
}

// AssignRanks sorts the teams and sets Rank to the 1-based position. The
// returned map is keyed by team ID.
func AssignRanks(teams []model.Team) ([]model.Team, map[string]int) {
	ranked := Sort(teams)
	ranks := make(map[string]int, len(ranked))
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranks[ranked[i].ID] = i + 1
	}
	return ranked, ranks
}

// ByStoredRank orders teams the way the league table shows them between
// recomputations.
func ByStoredRank(teams []model.Team) {
	slices.SortStableFunc(teams, func(a, b model.Team) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
