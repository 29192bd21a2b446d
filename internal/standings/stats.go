// Package standings derives team statistics and orders a league table.
package standings

import (
	"statshub-app/internal/apperr"
	"statshub-app/internal/model"
)

const (
	pointsPerWin  = 3
	pointsPerDraw = 1
)

// Counters are the raw tallies entered for a team.
type Counters struct {
	Played        int `json:"played"`
	Won           int `json:"won"`
	Drawn         int `json:"drawn"`
	Lost          int `json:"lost"`
	GoalsScored   int `json:"goalsScored"`
	GoalsConceded int `json:"goalsConceded"`
}

type Derived struct {
	GoalDifference int
	Points         int
}

func Points(won, drawn int) int {
	return pointsPerWin*won + pointsPerDraw*drawn
}

func GoalDifference(scored, conceded int) int {
	return scored - conceded
}

func Derive(c Counters) (Derived, error) {
	if err := c.Validate(); err != nil {
		return Derived{}, err
	}
	return Derived{
		GoalDifference: GoalDifference(c.GoalsScored, c.GoalsConceded),
		Points:         Points(c.Won, c.Drawn),
	}, nil
}

func (c Counters) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"played", c.Played},
		{"won", c.Won},
		{"drawn", c.Drawn},
		{"lost", c.Lost},
		{"goalsScored", c.GoalsScored},
		{"goalsConceded", c.GoalsConceded},
	}
	for _, f := range fields {
		if f.value < 0 {
			return apperr.Validation("%s must not be negative", f.name)
		}
	}
	if c.Played < c.Won+c.Drawn+c.Lost {
		return apperr.Validation("played (%d) is less than won + drawn + lost (%d)", c.Played, c.Won+c.Drawn+c.Lost)
	}
	return nil
}

// Apply copies the counters and their derived values onto the team. Rank is
// left as it is.
func Apply(team model.Team, c Counters) (model.Team, error) {
	d, err := Derive(c)
	if err != nil {
		return model.Team{}, err
	}
	team.Played = c.Played
	team.Won = c.Won
	team.Drawn = c.Drawn
	team.Lost = c.Lost
	team.GoalsScored = c.GoalsScored
	team.GoalsConceded = c.GoalsConceded
	team.GoalDifference = d.GoalDifference
	team.Points = d.Points
	return team, nil
}

func CountersOf(team model.Team) Counters {
	return Counters{
		Played:        team.Played,
		Won:           team.Won,
		Drawn:         team.Drawn,
		Lost:          team.Lost,
		GoalsScored:   team.GoalsScored,
		GoalsConceded: team.GoalsConceded,
	}
}
