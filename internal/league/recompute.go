package league

import (
	"context"
	"fmt"
	"sync"

	"statshub-app/internal/apperr"
	"statshub-app/internal/events"
	"statshub-app/internal/metrics"
	"statshub-app/internal/model"
	"statshub-app/internal/standings"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type rankChange struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// RecomputeRanks sorts the league's teams and writes every rank in one
// batch. If the batch fails no rank changes. Running it twice without a
// stats change in between gives the same ranks.
func (s *Service) RecomputeRanks(ctx context.Context, leagueID string) ([]model.Team, error) {
	if err := requireLeagueID(leagueID); err != nil {
		return nil, err
	}
	timer := prometheus.NewTimer(metrics.RecomputeDuration)
	defer timer.ObserveDuration()

	teams, err := s.Standings(ctx, leagueID)
	if err != nil {
		metrics.Recomputations.WithLabelValues("error").Inc()
		return nil, err
	}
	ranked, ranks := standings.AssignRanks(teams)
	if err := s.store.ApplyRanks(ctx, leagueID, ranks); err != nil {
		metrics.Recomputations.WithLabelValues("error").Inc()
		log.Ctx(ctx).Error().Err(err).Str("league_id", leagueID).Msg("rank recomputation failed")
		return nil, fmt.Errorf("%w: write ranks: %w", apperr.ErrPersistence, err)
	}
	metrics.Recomputations.WithLabelValues("ok").Inc()

	previous := make(map[string]int, len(teams))
	for _, t := range teams {
		previous[t.ID] = t.Rank
	}
	var changes []rankChange
	for _, t := range ranked {
		if previous[t.ID] != t.Rank {
			changes = append(changes, rankChange{TeamID: t.ID, Name: t.Name, From: previous[t.ID], To: t.Rank})
		}
	}
	log.Ctx(ctx).Info().Str("league_id", leagueID).Int("teams", len(ranked)).Int("changed", len(changes)).Msg("ranks recomputed")
	s.publish(ctx, events.StandingsRecomputed, leagueID, map[string]any{"teams": len(ranked), "changes": changes})
	return ranked, nil
}

type RecomputeResult struct {
	LeagueID string `json:"leagueId"`
	Teams    int    `json:"teams"`
	Error    string `json:"error,omitempty"`
}

// RecomputeAll recomputes every league on a bounded worker pool. Each
// league is its own batch, so one failure does not affect the others.
func (s *Service) RecomputeAll(ctx context.Context) ([]RecomputeResult, error) {
	leagues, err := s.ListLeagues(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]RecomputeResult, len(leagues))
	var workers sync.WaitGroup
	for i, l := range leagues {
		i, leagueID := i, l.ID
		results[i].LeagueID = leagueID
		workers.Add(1)
		err := pool.Submit(func() {
			defer workers.Done()
			ranked, err := s.RecomputeRanks(ctx, leagueID)
			results[i].Teams = len(ranked)
			if err != nil {
				results[i].Error = err.Error()
			}
		})
		if err != nil {
			workers.Done()
			results[i].Error = err.Error()
		}
	}
	workers.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	log.Ctx(ctx).Info().Int("leagues", len(results)).Int("failed", failed).Msg("recomputed all leagues")
	return results, nil
}
