// Package scheduler runs the periodic housekeeping jobs.
package scheduler

import (
	"context"
	"errors"
	"time"

	"statshub-app/internal/cache"
	"statshub-app/internal/league"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var ErrInvalidInterval = errors.New("job interval must be positive")

type Recomputer interface {
	RecomputeAll(ctx context.Context) ([]league.RecomputeResult, error)
}

type Service struct {
	scheduler gocron.Scheduler
}

func New(clock clockwork.Clock) (*Service, error) {
	opts := []gocron.SchedulerOption{
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("scheduler job panicked")
				}),
			),
		),
	}
	if clock != nil {
		opts = append(opts, gocron.WithClock(clock))
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}
	return &Service{scheduler: sched}, nil
}

// AddCacheSweep purges expired entries from every cache on each tick.
func (s *Service) AddCacheSweep(interval time.Duration, caches map[string]cache.Sweeper) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { SweepCaches(caches) }),
		gocron.WithName("cache-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

// AddRecompute recomputes every league's ranks on each tick.
func (s *Service) AddRecompute(interval time.Duration, r Recomputer) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { RecomputeLeagues(context.Background(), r) }),
		gocron.WithName("recompute-all"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (s *Service) JobNames() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

func (s *Service) Start() {
	s.scheduler.Start()
	log.Info().Int("jobs", len(s.scheduler.Jobs())).Msg("scheduler started")
}

func (s *Service) Stop() error {
	return s.scheduler.Shutdown()
}

func SweepCaches(caches map[string]cache.Sweeper) {
	for name, c := range caches {
		if removed := c.Sweep(); removed > 0 {
			log.Debug().Str("cache", name).Int("removed", removed).Msg("swept expired cache entries")
		}
	}
}

func RecomputeLeagues(ctx context.Context, r Recomputer) {
	results, err := r.RecomputeAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled recompute failed")
		return
	}
	for _, res := range results {
		if res.Error != "" {
			log.Error().Str("league_id", res.LeagueID).Str("error", res.Error).Msg("scheduled recompute failed for league")
		}
	}
}
