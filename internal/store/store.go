package store

import (
	"context"

	"statshub-app/internal/model"
)

// Store is the persistence contract. Team and match calls are scoped by
// league; an ID that belongs to another league is reported as not found.
// Roles are not checked here.
type Store interface {
	ListLeagues(ctx context.Context) ([]model.League, error)
	GetLeague(ctx context.Context, id string) (model.League, error)
	CreateLeague(ctx context.Context, league model.League) (model.League, error)

	ListTeams(ctx context.Context, leagueID string) ([]model.Team, error)
	GetTeam(ctx context.Context, leagueID, teamID string) (model.Team, error)
	CountTeams(ctx context.Context, leagueID string) (int, error)
	CreateTeam(ctx context.Context, team model.Team) (model.Team, error)
	UpdateTeamStats(ctx context.Context, team model.Team) error
	// ApplyRanks writes every rank or none of them.
	ApplyRanks(ctx context.Context, leagueID string, ranks map[string]int) error

	ListMatches(ctx context.Context, leagueID string) ([]model.Match, error)
	GetMatch(ctx context.Context, leagueID, matchID string) (model.Match, error)
	CreateMatch(ctx context.Context, match model.Match) (model.Match, error)
	UpdateMatchScore(ctx context.Context, leagueID, matchID string, home, away int) error
	DeleteMatch(ctx context.Context, leagueID, matchID string) error

	ListUsers(ctx context.Context) ([]model.UserProfile, error)
	GetUser(ctx context.Context, uid string) (model.UserProfile, error)
	CreateUser(ctx context.Context, user model.UserProfile) (model.UserProfile, error)
	UpdateUserRole(ctx context.Context, uid string, role model.Role) error

	// CreateCredential rejects an email that is already registered.
	CreateCredential(ctx context.Context, cred model.Credential) (model.Credential, error)
	GetCredentialByEmail(ctx context.Context, email string) (model.Credential, error)

	Close() error
}
