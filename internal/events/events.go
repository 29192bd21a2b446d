// Package events announces completed league changes to other services.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Type string

const (
	LeagueCreated       Type = "league.created"
	TeamRegistered      Type = "team.registered"
	TeamStatsUpdated    Type = "team.stats_updated"
	StandingsRecomputed Type = "standings.recomputed"
	MatchCreated        Type = "match.created"
	MatchScoreUpdated   Type = "match.score_updated"
	MatchDeleted        Type = "match.deleted"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	LeagueID   string    `json:"leagueId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func New(t Type, leagueID string, occurredAt time.Time, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		LeagueID:   leagueID,
		OccurredAt: occurredAt.UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogPublisher writes events to the request logger. It is used when no
// broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("league_id", event.LeagueID).
		RawJSON("payload", body).
		Msg("domain event")
	return nil
}

func (LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]Type, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
