// Package league holds the operations behind a league table: registering
// teams, entering statistics and results, and recomputing ranks.
package league

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"statshub-app/internal/apperr"
	"statshub-app/internal/cache"
	"statshub-app/internal/events"
	"statshub-app/internal/metrics"
	"statshub-app/internal/model"
	"statshub-app/internal/store"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	minLeagueName = 3
	maxLeagueName = 100
	minTeamName   = 2
	maxTeamName   = 50
)

type Options struct {
	Clock     clockwork.Clock
	Publisher events.Publisher
	// Location is the zone match dates and times are entered in.
	Location *time.Location
	// TeamListTTL bounds how long the team name list is served from cache.
	TeamListTTL time.Duration
	// Workers bounds concurrent leagues in RecomputeAll.
	Workers int
}

type Service struct {
	store     store.Store
	clock     clockwork.Clock
	publisher events.Publisher
	location  *time.Location
	teamNames *cache.Cache[[]string]
	workers   int
}

func NewService(st store.Store, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.LogPublisher{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TeamListTTL <= 0 {
		opts.TeamListTTL = 24 * time.Hour
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Service{
		store:     st,
		clock:     opts.Clock,
		publisher: opts.Publisher,
		location:  opts.Location,
		teamNames: cache.New[[]string](opts.Clock, opts.TeamListTTL),
		workers:   opts.Workers,
	}
}

// TeamNameCache is exposed so the scheduler can sweep it.
func (s *Service) TeamNameCache() cache.Sweeper {
	return s.teamNames
}

func (s *Service) CreateLeague(ctx context.Context, name string) (model.League, error) {
	name = strings.TrimSpace(name)
	if err := checkLength("league name", name, minLeagueName, maxLeagueName); err != nil {
		return model.League{}, err
	}
	league, err := s.store.CreateLeague(ctx, model.League{Name: name, CreatedAt: s.clock.Now().UTC()})
	if err != nil {
		return model.League{}, apperr.Persistence("create league", err)
	}
	log.Ctx(ctx).Info().Str("league_id", league.ID).Str("name", league.Name).Msg("league created")
	s.publish(ctx, events.LeagueCreated, league.ID, league)
	return league, nil
}

func (s *Service) ListLeagues(ctx context.Context) ([]model.League, error) {
	leagues, err := s.store.ListLeagues(ctx)
	if err != nil {
		return nil, apperr.Persistence("list leagues", err)
	}
	return leagues, nil
}

func (s *Service) GetLeague(ctx context.Context, leagueID string) (model.League, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return model.League{}, err
	}
	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return model.League{}, apperr.Persistence("load league", err)
	}
	return league, nil
}

func (s *Service) publish(ctx context.Context, t events.Type, leagueID string, payload any) {
	err := s.publisher.Publish(ctx, events.New(t, leagueID, s.clock.Now(), payload))
	metrics.EventsPublished.WithLabelValues(string(t), metrics.Outcome(err)).Inc()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("event_type", string(t)).Str("league_id", leagueID).Msg("publish event")
	}
}

func requireLeagueID(leagueID string) error {
	if strings.TrimSpace(leagueID) == "" {
		return apperr.Validation("league id is required")
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return apperr.Validation("%s must be %d-%d characters", field, min, max)
	}
	return nil
}
