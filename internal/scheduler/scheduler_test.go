package scheduler

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"statshub-app/internal/cache"
	"statshub-app/internal/league"

	"github.com/jonboulle/clockwork"
)

type fakeRecomputer struct {
	calls int
}

func (f *fakeRecomputer) RecomputeAll(ctx context.Context) ([]league.RecomputeResult, error) {
	f.calls++
	return []league.RecomputeResult{{LeagueID: "l1", Teams: 2}, {LeagueID: "l2", Error: "boom"}}, nil
}

func TestJobsRegistered(t *testing.T) {
	s, err := New(clockwork.NewFakeClock())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer s.Stop()

	if err := s.AddCacheSweep(0, nil); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected invalid interval, got %v", err)
	}
	if err := s.AddCacheSweep(time.Minute, map[string]cache.Sweeper{}); err != nil {
		t.Fatalf("add sweep: %v", err)
	}
	if err := s.AddRecompute(time.Hour, &fakeRecomputer{}); err != nil {
		t.Fatalf("add recompute: %v", err)
	}
	names := s.JobNames()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "cache-sweep" || names[1] != "recompute-all" {
		t.Fatalf("unexpected jobs %v", names)
	}
}

func TestSweepCaches(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := cache.New[string](clock, time.Minute)
	c.Set("a", "1")
	clock.Advance(2 * time.Minute)
	SweepCaches(map[string]cache.Sweeper{"test": c})
	if c.Len() != 0 {
		t.Fatalf("expected expired entry swept")
	}
}

func TestRecomputeLeagues(t *testing.T) {
	r := &fakeRecomputer{}
	RecomputeLeagues(context.Background(), r)
	if r.calls != 1 {
		t.Fatalf("expected one recompute, got %d", r.calls)
	}
}
