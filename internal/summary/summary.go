// Package summary produces a short natural-language performance review of
// a team from its league statistics.
package summary

import (
	"context"
	"fmt"
	"strings"

	"statshub-app/internal/model"
)

type Input struct {
	TeamName       string `json:"teamName"`
	Played         int    `json:"matchesPlayed"`
	Won            int    `json:"wins"`
	Drawn          int    `json:"draws"`
	Lost           int    `json:"losses"`
	GoalsScored    int    `json:"goalsScored"`
	GoalsConceded  int    `json:"goalsConceded"`
	GoalDifference int    `json:"goalDifference"`
}

type Summary struct {
	Summary          string `json:"summary"`
	ImprovementAreas string `json:"improvementAreas"`
}

type Generator interface {
	Generate(ctx context.Context, in Input) (Summary, error)
}

func InputFromTeam(team model.Team) Input {
	return Input{
		TeamName:       team.Name,
		Played:         team.Played,
		Won:            team.Won,
		Drawn:          team.Drawn,
		Lost:           team.Lost,
		GoalsScored:    team.GoalsScored,
		GoalsConceded:  team.GoalsConceded,
		GoalDifference: team.GoalDifference,
	}
}

const systemPrompt = `You are an expert football analyst providing performance summaries for amateur football teams.
Given the statistics of a team, write a concise summary of their overall performance and highlight areas where they can improve.
Respond with a JSON object with two string fields: "summary" and "improvementAreas".`

func userPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Team Name: %s\n", in.TeamName)
	fmt.Fprintf(&b, "Matches Played: %d\n", in.Played)
	fmt.Fprintf(&b, "Wins: %d\n", in.Won)
	fmt.Fprintf(&b, "Draws: %d\n", in.Drawn)
	fmt.Fprintf(&b, "Losses: %d\n", in.Lost)
	fmt.Fprintf(&b, "Goals Scored: %d\n", in.GoalsScored)
	fmt.Fprintf(&b, "Goals Conceded: %d\n", in.GoalsConceded)
	fmt.Fprintf(&b, "Goal Difference: %d\n", in.GoalDifference)
	return b.String()
}
