package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"statshub-app/internal/apperr"
	"statshub-app/internal/model"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu      sync.RWMutex
	leagues map[string]model.League
	teams   map[string]model.Team
	matches map[string]model.Match
	users   map[string]model.UserProfile
	creds   map[string]model.Credential // keyed by email
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leagues: make(map[string]model.League),
		teams:   make(map[string]model.Team),
		matches: make(map[string]model.Match),
		users:   make(map[string]model.UserProfile),
		creds:   make(map[string]model.Credential),
	}
}

func (s *MemoryStore) ListLeagues(ctx context.Context) ([]model.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leagues := make([]model.League, 0, len(s.leagues))
	for _, l := range s.leagues {
		leagues = append(leagues, l)
	}
	sortLeagues(leagues)
	return leagues, nil
}

func (s *MemoryStore) GetLeague(ctx context.Context, id string) (model.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leagues[id]
	if !ok {
		return model.League{}, errLeagueNotFound
	}
	return l, nil
}

func (s *MemoryStore) CreateLeague(ctx context.Context, league model.League) (model.League, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if league.ID == "" {
		league.ID = uuid.NewString()
	}
	if league.CreatedAt.IsZero() {
		league.CreatedAt = time.Now().UTC()
	}
	s.leagues[league.ID] = league
	return league, nil
}

func (s *MemoryStore) ListTeams(ctx context.Context, leagueID string) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := []model.Team{}
	for _, t := range s.teams {
		if t.LeagueID == leagueID {
			teams = append(teams, t)
		}
	}
	sortTeams(teams)
	return teams, nil
}

func (s *MemoryStore) GetTeam(ctx context.Context, leagueID, teamID string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[teamID]
	if !ok || t.LeagueID != leagueID {
		return model.Team{}, errTeamNotFound
	}
	return t, nil
}

func (s *MemoryStore) CountTeams(ctx context.Context, leagueID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.teams {
		if t.LeagueID == leagueID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CreateTeam(ctx context.Context, team model.Team) (model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leagues[team.LeagueID]; !ok {
		return model.Team{}, errLeagueNotFound
	}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	s.teams[team.ID] = team
	return team, nil
}

func (s *MemoryStore) UpdateTeamStats(ctx context.Context, team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.teams[team.ID]
	if !ok || existing.LeagueID != team.LeagueID {
		return errTeamNotFound
	}
	team.Name = existing.Name
	team.Rank = existing.Rank
	s.teams[team.ID] = team
	return nil
}

func (s *MemoryStore) ApplyRanks(ctx context.Context, leagueID string, ranks map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range ranks {
		t, ok := s.teams[id]
		if !ok || t.LeagueID != leagueID {
			return apperr.NotFound("team %s not found in league %s", id, leagueID)
		}
	}
	for id, rank := range ranks {
		t := s.teams[id]
		t.Rank = rank
		s.teams[id] = t
	}
	return nil
}

func (s *MemoryStore) ListMatches(ctx context.Context, leagueID string) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []model.Match{}
	for _, m := range s.matches {
		if m.LeagueID == leagueID {
			matches = append(matches, copyMatch(m))
		}
	}
	sortMatches(matches)
	return matches, nil
}

func (s *MemoryStore) GetMatch(ctx context.Context, leagueID, matchID string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok || m.LeagueID != leagueID {
		return model.Match{}, errMatchNotFound
	}
	return copyMatch(m), nil
}

func (s *MemoryStore) CreateMatch(ctx context.Context, match model.Match) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leagues[match.LeagueID]; !ok {
		return model.Match{}, errLeagueNotFound
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	s.matches[match.ID] = copyMatch(match)
	return match, nil
}

func (s *MemoryStore) UpdateMatchScore(ctx context.Context, leagueID, matchID string, home, away int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok || m.LeagueID != leagueID {
		return errMatchNotFound
	}
	m.HomeScore = intPtr(home)
	m.AwayScore = intPtr(away)
	s.matches[matchID] = m
	return nil
}

func (s *MemoryStore) DeleteMatch(ctx context.Context, leagueID, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok || m.LeagueID != leagueID {
		return errMatchNotFound
	}
	delete(s.matches, matchID)
	return nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.UserProfile, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sortUsers(users)
	return users, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, uid string) (model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[uid]
	if !ok {
		return model.UserProfile{}, errUserNotFound
	}
	return u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user model.UserProfile) (model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(user.UID) == "" {
		return model.UserProfile{}, apperr.Validation("uid is required")
	}
	if _, ok := s.users[user.UID]; ok {
		return model.UserProfile{}, apperr.Validation("user already exists")
	}
	if user.Role == "" {
		user.Role = model.RoleViewer
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	s.users[user.UID] = user
	return user, nil
}

func (s *MemoryStore) UpdateUserRole(ctx context.Context, uid string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[uid]
	if !ok {
		return errUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	s.users[uid] = u
	return nil
}

func (s *MemoryStore) CreateCredential(ctx context.Context, cred model.Credential) (model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	if _, ok := s.creds[cred.Email]; ok {
		return model.Credential{}, errEmailTaken
	}
	if cred.UID == "" {
		cred.UID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}
	s.creds[cred.Email] = cred
	return cred, nil
}

func (s *MemoryStore) GetCredentialByEmail(ctx context.Context, email string) (model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.Credential{}, errCredentialNotFound
	}
	return cred, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func copyMatch(m model.Match) model.Match {
	if m.HomeScore != nil {
		m.HomeScore = intPtr(*m.HomeScore)
	}
	if m.AwayScore != nil {
		m.AwayScore = intPtr(*m.AwayScore)
	}
	return m
}
