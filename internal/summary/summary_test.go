package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"statshub-app/internal/apperr"
	"statshub-app/internal/model"

	"golang.org/x/time/rate"
)

type countingGenerator struct {
	calls atomic.Int32
	err   error
}

func (g *countingGenerator) Generate(ctx context.Context, in Input) (Summary, error) {
	g.calls.Add(1)
	if g.err != nil {
		return Summary{}, g.err
	}
	return Summary{Summary: in.TeamName + " are strong", ImprovementAreas: "Defence"}, nil
}

func TestServiceCachesPerStatsSnapshot(t *testing.T) {
	gen := &countingGenerator{}
	svc := NewService(gen, nil, nil)
	ctx := context.Background()
	team := model.Team{ID: "t1", Name: "Red", Played: 3, Won: 2, Drawn: 1, Points: 7}

	first, err := svc.ForTeam(ctx, team)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.ForTeam(ctx, team); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls.Load())
	}
	if first.Summary != "Red are strong" {
		t.Fatalf("unexpected summary %+v", first)
	}

	team.Played, team.Won, team.Points = 4, 3, 10
	if _, err := svc.ForTeam(ctx, team); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if gen.calls.Load() != 2 {
		t.Fatalf("expected new stats to miss the cache, got %d calls", gen.calls.Load())
	}

	if removed := svc.Invalidate("t1"); removed != 2 {
		t.Fatalf("expected 2 invalidated entries, got %d", removed)
	}
}

func TestServiceDoesNotCacheFailures(t *testing.T) {
	gen := &countingGenerator{err: errors.New("model overloaded")}
	svc := NewService(gen, nil, nil)
	team := model.Team{ID: "t1", Name: "Red"}

	for i := 0; i < 2; i++ {
		if _, err := svc.ForTeam(context.Background(), team); !errors.Is(err, apperr.ErrExternalService) {
			t.Fatalf("expected external service error, got %v", err)
		}
	}
	if gen.calls.Load() != 2 {
		t.Fatalf("expected failures to be retried by the caller, got %d calls", gen.calls.Load())
	}
}

func TestServiceThrottles(t *testing.T) {
	gen := &countingGenerator{}
	svc := NewService(gen, nil, rate.NewLimiter(rate.Limit(0.001), 1))
	ctx := context.Background()
	if _, err := svc.ForTeam(ctx, model.Team{ID: "a", Name: "A"}); err != nil {
		t.Fatalf("first summary: %v", err)
	}
	if _, err := svc.ForTeam(ctx, model.Team{ID: "b", Name: "B"}); !errors.Is(err, apperr.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}

func TestHTTPGenerator(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"Dominant season.\",\"improvementAreas\":\"Set pieces.\"}"}}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	gen, err := NewHTTPGenerator(ctx, HTTPOptions{Endpoint: srv.URL + "/v1/", Model: "test-model", APIKey: "secret"})
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	out, err := gen.Generate(ctx, InputFromTeam(model.Team{Name: "Dragons FC", Played: 10, Won: 8, Drawn: 1, Lost: 1, GoalsScored: 25, GoalsConceded: 5, GoalDifference: 20}))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Summary != "Dominant season." || out.ImprovementAreas != "Set pieces." {
		t.Fatalf("unexpected summary %+v", out)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
	if gotReq.Model != "test-model" || len(gotReq.Messages) != 2 || !strings.Contains(gotReq.Messages[1].Content, "Goal Difference: 20") {
		t.Fatalf("unexpected request %+v", gotReq)
	}
}

func TestHTTPGeneratorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen, err := NewHTTPGenerator(context.Background(), HTTPOptions{Endpoint: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	if _, err := gen.Generate(context.Background(), Input{TeamName: "Red"}); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestParseSummaryFenced(t *testing.T) {
	s, err := parseSummary("```json\n{\"summary\":\"ok\",\"improvementAreas\":\"none\"}\n```")
	if err != nil || s.Summary != "ok" {
		t.Fatalf("unexpected parse result %+v %v", s, err)
	}
	if _, err := parseSummary(`{"summary":""}`); err == nil {
		t.Fatalf("expected empty summary to fail")
	}
}
