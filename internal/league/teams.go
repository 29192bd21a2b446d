package league

import (
	"context"
	"slices"
	"strings"

	"statshub-app/internal/apperr"
	"statshub-app/internal/cache"
	"statshub-app/internal/events"
	"statshub-app/internal/metrics"
	"statshub-app/internal/model"
	"statshub-app/internal/standings"

	"github.com/rs/zerolog/log"
)

// AddTeam registers a team with zero counters. Its rank is provisional
// (count + 1) until the next recomputation; two concurrent registrations
// may end up with the same provisional rank.
func (s *Service) AddTeam(ctx context.Context, leagueID, name string) (model.Team, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return model.Team{}, err
	}
	name = strings.TrimSpace(name)
	if err := checkLength("team name", name, minTeamName, maxTeamName); err != nil {
		return model.Team{}, err
	}
	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return model.Team{}, err
	}
	existing, err := s.store.ListTeams(ctx, leagueID)
	if err != nil {
		return model.Team{}, apperr.Persistence("list teams", err)
	}
	for _, t := range existing {
		if strings.EqualFold(t.Name, name) {
			return model.Team{}, apperr.Validation("team %q already exists in this league", name)
		}
	}
	team, err := s.store.CreateTeam(ctx, model.Team{LeagueID: leagueID, Name: name, Rank: len(existing) + 1})
	if err != nil {
		return model.Team{}, apperr.Persistence("create team", err)
	}
	s.teamNames.Invalidate(teamNamesKey(leagueID))
	log.Ctx(ctx).Info().Str("league_id", leagueID).Str("team_id", team.ID).Int("rank", team.Rank).Msg("team registered")
	s.publish(ctx, events.TeamRegistered, leagueID, team)
	return team, nil
}

// Standings returns the league table in stored rank order.
func (s *Service) Standings(ctx context.Context, leagueID string) ([]model.Team, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return nil, err
	}
	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	teams, err := s.store.ListTeams(ctx, leagueID)
	if err != nil {
		return nil, apperr.Persistence("list teams", err)
	}
	return teams, nil
}

func (s *Service) GetTeam(ctx context.Context, leagueID, teamID string) (model.Team, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return model.Team{}, err
	}
	team, err := s.store.GetTeam(ctx, leagueID, teamID)
	if err != nil {
		return model.Team{}, apperr.Persistence("load team", err)
	}
	return team, nil
}

// UpdateTeamStats replaces a team's counters and stores the derived goal
// difference and points. Rank is not touched.
func (s *Service) UpdateTeamStats(ctx context.Context, leagueID, teamID string, c standings.Counters) (model.Team, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return model.Team{}, err
	}
	if err := c.Validate(); err != nil {
		return model.Team{}, err
	}
	team, err := s.GetTeam(ctx, leagueID, teamID)
	if err != nil {
		return model.Team{}, err
	}
	team, err = standings.Apply(team, c)
	if err != nil {
		return model.Team{}, err
	}
	if err := s.store.UpdateTeamStats(ctx, team); err != nil {
		return model.Team{}, apperr.Persistence("update team stats", err)
	}
	log.Ctx(ctx).Info().Str("league_id", leagueID).Str("team_id", teamID).Int("points", team.Points).Msg("team stats updated")
	s.publish(ctx, events.TeamStatsUpdated, leagueID, team)
	return team, nil
}

// TeamNames lists the league's team names for match entry. The list is
// cached per league and dropped when a team registers.
func (s *Service) TeamNames(ctx context.Context, leagueID string) ([]string, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return nil, err
	}
	key := teamNamesKey(leagueID)
	if names, ok := s.teamNames.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("team_names", metrics.CacheResult(true)).Inc()
		return slices.Clone(names), nil
	}
	metrics.CacheLookups.WithLabelValues("team_names", metrics.CacheResult(false)).Inc()
	teams, err := s.Standings(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name)
	}
	s.teamNames.Set(key, names)
	return slices.Clone(names), nil
}

// TableFromResults tallies the recorded match results into a ranked table
// without writing anything.
func (s *Service) TableFromResults(ctx context.Context, leagueID string) ([]model.Team, error) {
	teams, err := s.Standings(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatches(ctx, leagueID)
	if err != nil {
		return nil, apperr.Persistence("list matches", err)
	}
	return standings.Tally(teams, matches), nil
}

func teamNamesKey(leagueID string) string {
	return cache.Key("team-names", leagueID)
}
