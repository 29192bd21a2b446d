package standings

import (
	"strings"

	"statshub-app/internal/model"
)

// Tally builds counters for every team from the league's recorded results.
// Matches without a score, or naming a team that is not registered, are
// skipped. The result is a preview only; stored team counters are never
// changed here.
func Tally(teams []model.Team, matches []model.Match) []model.Team {
	index := make(map[string]*Counters, len(teams))
	for _, t := range teams {
		index[strings.ToLower(t.Name)] = &Counters{}
	}

	for _, match := range matches {
		if !match.HasResult() {
			continue
		}
		home := index[strings.ToLower(match.HomeTeam)]
		away := index[strings.ToLower(match.AwayTeam)]
		if home == nil || away == nil {
			continue
		}
		hs, as := *match.HomeScore, *match.AwayScore
		home.Played++
		away.Played++
		home.GoalsScored += hs
		home.GoalsConceded += as
		away.GoalsScored += as
		away.GoalsConceded += hs

		switch {
		case hs > as:
			home.Won++
			away.Lost++
		case hs < as:
			away.Won++
			home.Lost++
		default:
			home.Drawn++
			away.Drawn++
		}
	}

	out := make([]model.Team, 0, len(teams))
	for _, t := range teams {
		c := index[strings.ToLower(t.Name)]
		tallied, err := Apply(t, *c)
		if err != nil {
			continue
		}
		out = append(out, tallied)
	}
	ranked, _ := AssignRanks(out)
	return ranked
}
