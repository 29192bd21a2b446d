package summary

import (
	"context"

	"statshub-app/internal/apperr"
	"statshub-app/internal/cache"
	"statshub-app/internal/metrics"
	"statshub-app/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Service caches summaries per team and statistics snapshot. Entries never
// expire; a change in played or points produces a new key.
type Service struct {
	generator Generator
	cache     *cache.Cache[Summary]
	limiter   *rate.Limiter
	group     singleflight.Group
}

func NewService(generator Generator, c *cache.Cache[Summary], limiter *rate.Limiter) *Service {
	if c == nil {
		c = cache.New[Summary](nil, cache.NoExpiry)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Service{generator: generator, cache: c, limiter: limiter}
}

func KeyForTeam(team model.Team) string {
	return cache.Key(team.ID, team.Played, team.Points)
}

func (s *Service) ForTeam(ctx context.Context, team model.Team) (Summary, error) {
	key := KeyForTeam(team)
	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("summary", metrics.CacheResult(true)).Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("summary", metrics.CacheResult(false)).Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
		if !s.limiter.Allow() {
			metrics.SummaryRequests.WithLabelValues("throttled").Inc()
			return Summary{}, apperr.ErrRateLimited
		}
		generated, err := s.generator.Generate(ctx, InputFromTeam(team))
		metrics.SummaryRequests.WithLabelValues(metrics.Outcome(err)).Inc()
		if err != nil {
			return Summary{}, apperr.External("generate performance summary", err)
		}
		s.cache.Set(key, generated)
		return generated, nil
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("team_id", team.ID).Msg("performance summary unavailable")
		return Summary{}, err
	}
	return v.(Summary), nil
}

// Invalidate drops every cached summary of the team.
func (s *Service) Invalidate(teamID string) int {
	return s.cache.InvalidatePrefix(teamID + ":")
}
