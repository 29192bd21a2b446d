package league

import (
	"context"
	"regexp"
	"strings"
	"time"

	"statshub-app/internal/apperr"
	"statshub-app/internal/events"
	"statshub-app/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	maxMatchTeamName = 50
	maxLocation      = 100
	dateLayout       = "2006-01-02"
	timeLayout       = "15:04"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

type NewMatch struct {
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type MatchFilter string

const (
	MatchesAll      MatchFilter = "all"
	MatchesUpcoming MatchFilter = "upcoming"
	MatchesResults  MatchFilter = "results"
)

func ParseMatchFilter(value string) (MatchFilter, error) {
	switch f := MatchFilter(strings.ToLower(strings.TrimSpace(value))); f {
	case "", MatchesAll:
		return MatchesAll, nil
	case MatchesUpcoming, MatchesResults:
		return f, nil
	}
	return "", apperr.Validation("unknown match status %q", value)
}

// AddMatch schedules a fixture. Teams are referenced by name, so they are
// not required to be registered in the league.
func (s *Service) AddMatch(ctx context.Context, leagueID string, in NewMatch) (model.Match, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return model.Match{}, err
	}
	kickoff, err := s.validateNewMatch(&in)
	if err != nil {
		return model.Match{}, err
	}
	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return model.Match{}, err
	}
	match, err := s.store.CreateMatch(ctx, model.Match{
		LeagueID: leagueID,
		HomeTeam: in.HomeTeam,
		AwayTeam: in.AwayTeam,
		Location: in.Location,
		DateTime: kickoff,
	})
	if err != nil {
		return model.Match{}, apperr.Persistence("create match", err)
	}
	log.Ctx(ctx).Info().Str("league_id", leagueID).Str("match_id", match.ID).Time("kickoff", kickoff).Msg("match scheduled")
	s.publish(ctx, events.MatchCreated, leagueID, match)
	return match, nil
}

func (s *Service) validateNewMatch(in *NewMatch) (time.Time, error) {
	in.HomeTeam = strings.TrimSpace(in.HomeTeam)
	in.AwayTeam = strings.TrimSpace(in.AwayTeam)
	in.Location = strings.TrimSpace(in.Location)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)

	if err := checkLength("home team", in.HomeTeam, 1, maxMatchTeamName); err != nil {
		return time.Time{}, err
	}
	if err := checkLength("away team", in.AwayTeam, 1, maxMatchTeamName); err != nil {
		return time.Time{}, err
	}
	if strings.EqualFold(in.HomeTeam, in.AwayTeam) {
		return time.Time{}, apperr.Validation("home and away teams must be different")
	}
	if err := checkLength("location", in.Location, 1, maxLocation); err != nil {
		return time.Time{}, err
	}
	if !datePattern.MatchString(in.Date) {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	if !timePattern.MatchString(in.Time) {
		return time.Time{}, apperr.Validation("time must be HH:MM")
	}
	kickoff, err := time.ParseInLocation(dateLayout+" "+timeLayout, in.Date+" "+in.Time, s.location)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %s", in.Date)
	}
	return kickoff.UTC(), nil
}

// ListMatches returns the league's matches by kickoff. Upcoming means no
// score yet and a kickoff that has not passed.
func (s *Service) ListMatches(ctx context.Context, leagueID string, filter MatchFilter, team string) ([]model.Match, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return nil, err
	}
	if _, err := s.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatches(ctx, leagueID)
	if err != nil {
		return nil, apperr.Persistence("list matches", err)
	}
	now := s.clock.Now()
	team = strings.TrimSpace(team)
	out := make([]model.Match, 0, len(matches))
	for _, m := range matches {
		if team != "" && !m.Involves(team) {
			continue
		}
		switch filter {
		case MatchesUpcoming:
			if m.HasResult() || m.DateTime.Before(now) {
				continue
			}
		case MatchesResults:
			if !m.HasResult() {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// UpdateScore records a result. Team statistics are entered separately and
// are not changed here.
func (s *Service) UpdateScore(ctx context.Context, leagueID, matchID string, home, away int) (model.Match, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return model.Match{}, err
	}
	if home < 0 || away < 0 {
		return model.Match{}, apperr.Validation("scores must not be negative")
	}
	if err := s.store.UpdateMatchScore(ctx, leagueID, matchID, home, away); err != nil {
		return model.Match{}, apperr.Persistence("update match score", err)
	}
	match, err := s.store.GetMatch(ctx, leagueID, matchID)
	if err != nil {
		return model.Match{}, apperr.Persistence("load match", err)
	}
	log.Ctx(ctx).Info().Str("league_id", leagueID).Str("match_id", matchID).Int("home", home).Int("away", away).Msg("score recorded")
	s.publish(ctx, events.MatchScoreUpdated, leagueID, match)
	return match, nil
}

func (s *Service) DeleteMatch(ctx context.Context, leagueID, matchID string) error {
	if err := requireLeagueID(leagueID); err != nil {
		return err
	}
	if err := s.store.DeleteMatch(ctx, leagueID, matchID); err != nil {
		return apperr.Persistence("delete match", err)
	}
	log.Ctx(ctx).Info().Str("league_id", leagueID).Str("match_id", matchID).Msg("match deleted")
	s.publish(ctx, events.MatchDeleted, leagueID, map[string]string{"matchId": matchID})
	return nil
}
