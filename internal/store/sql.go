package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"statshub-app/internal/apperr"
	"statshub-app/internal/model"

	"github.com/google/uuid"
)

// sqlStore holds the queries shared by the SQLite and Postgres backends.
// Queries are written with ? placeholders and rebound per dialect.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	timeArg func(time.Time) any
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	leagueColumns = `id, name, created_at`
	teamColumns   = `id, league_id, name, rank, played, won, drawn, lost, goals_scored, goals_conceded, goal_difference, points`
	matchColumns  = `id, league_id, home_team, away_team, location, date_time, home_score, away_score`
	userColumns   = `uid, email, display_name, role, created_at, updated_at`
	credColumns   = `uid, email, display_name, password_hash, created_at`
)

func (s *sqlStore) q(query string) string {
	if s.dialect.name != postgresDialect.name {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) ListLeagues(ctx context.Context) ([]model.League, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+leagueColumns+` FROM leagues`)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	defer rows.Close()

	leagues := []model.League{}
	for rows.Next() {
		l, err := scanLeagueRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		leagues = append(leagues, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	sortLeagues(leagues)
	return leagues, nil
}

func (s *sqlStore) GetLeague(ctx context.Context, id string) (model.League, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+leagueColumns+` FROM leagues WHERE id = ?`), id)
	l, err := scanLeagueRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.League{}, errLeagueNotFound
	}
	if err != nil {
		return model.League{}, fmt.Errorf("get league: %w", err)
	}
	return l, nil
}

func (s *sqlStore) CreateLeague(ctx context.Context, league model.League) (model.League, error) {
	if league.ID == "" {
		league.ID = uuid.NewString()
	}
	if league.CreatedAt.IsZero() {
		league.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO leagues (`+leagueColumns+`) VALUES (?,?,?)`),
		league.ID, league.Name, s.timeArg(league.CreatedAt),
	)
	if err != nil {
		return model.League{}, fmt.Errorf("create league: %w", err)
	}
	return league, nil
}

func (s *sqlStore) ListTeams(ctx context.Context, leagueID string) ([]model.Team, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+teamColumns+` FROM teams WHERE league_id = ?`), leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		t, err := scanTeamRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	sortTeams(teams)
	return teams, nil
}

func (s *sqlStore) GetTeam(ctx context.Context, leagueID, teamID string) (model.Team, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+teamColumns+` FROM teams WHERE id = ? AND league_id = ?`), teamID, leagueID)
	t, err := scanTeamRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Team{}, errTeamNotFound
	}
	if err != nil {
		return model.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

func (s *sqlStore) CountTeams(ctx context.Context, leagueID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM teams WHERE league_id = ?`), leagueID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return count, nil
}

func (s *sqlStore) CreateTeam(ctx context.Context, team model.Team) (model.Team, error) {
	if _, err := s.GetLeague(ctx, team.LeagueID); err != nil {
		return model.Team{}, err
	}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO teams (`+teamColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`),
		team.ID, team.LeagueID, team.Name, team.Rank, team.Played, team.Won, team.Drawn, team.Lost,
		team.GoalsScored, team.GoalsConceded, team.GoalDifference, team.Points,
	)
	if err != nil {
		return model.Team{}, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

func (s *sqlStore) UpdateTeamStats(ctx context.Context, team model.Team) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE teams SET played = ?, won = ?, drawn = ?, lost = ?, goals_scored = ?, goals_conceded = ?, goal_difference = ?, points = ? WHERE id = ? AND league_id = ?`),
		team.Played, team.Won, team.Drawn, team.Lost, team.GoalsScored, team.GoalsConceded,
		team.GoalDifference, team.Points, team.ID, team.LeagueID,
	)
	if err != nil {
		return fmt.Errorf("update team stats: %w", err)
	}
	return expectOneRow(res, errTeamNotFound)
}

func (s *sqlStore) ApplyRanks(ctx context.Context, leagueID string, ranks map[string]int) error {
	return runInTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.q(`UPDATE teams SET rank = ? WHERE id = ? AND league_id = ?`))
		if err != nil {
			return fmt.Errorf("prepare rank update: %w", err)
		}
		defer stmt.Close()

		for id, rank := range ranks {
			res, err := stmt.ExecContext(ctx, rank, id, leagueID)
			if err != nil {
				return fmt.Errorf("update rank for team %s: %w", id, err)
			}
			if err := expectOneRow(res, apperr.NotFound("team %s not found in league %s", id, leagueID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqlStore) ListMatches(ctx context.Context, leagueID string) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+matchColumns+` FROM matches WHERE league_id = ?`), leagueID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := []model.Match{}
	for rows.Next() {
		m, err := scanMatchRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	sortMatches(matches)
	return matches, nil
}

func (s *sqlStore) GetMatch(ctx context.Context, leagueID, matchID string) (model.Match, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+matchColumns+` FROM matches WHERE id = ? AND league_id = ?`), matchID, leagueID)
	m, err := scanMatchRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, errMatchNotFound
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func (s *sqlStore) CreateMatch(ctx context.Context, match model.Match) (model.Match, error) {
	if _, err := s.GetLeague(ctx, match.LeagueID); err != nil {
		return model.Match{}, err
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO matches (`+matchColumns+`) VALUES (?,?,?,?,?,?,?,?)`),
		match.ID, match.LeagueID, match.HomeTeam, match.AwayTeam, match.Location, s.timeArg(match.DateTime),
		nullableInt(match.HomeScore), nullableInt(match.AwayScore),
	)
	if err != nil {
		return model.Match{}, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

func (s *sqlStore) UpdateMatchScore(ctx context.Context, leagueID, matchID string, home, away int) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE matches SET home_score = ?, away_score = ? WHERE id = ? AND league_id = ?`),
		home, away, matchID, leagueID,
	)
	if err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	return expectOneRow(res, errMatchNotFound)
}

func (s *sqlStore) DeleteMatch(ctx context.Context, leagueID, matchID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM matches WHERE id = ? AND league_id = ?`), matchID, leagueID)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return expectOneRow(res, errMatchNotFound)
}

func (s *sqlStore) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.UserProfile{}
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sortUsers(users)
	return users, nil
}

func (s *sqlStore) GetUser(ctx context.Context, uid string) (model.UserProfile, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+userColumns+` FROM users WHERE uid = ?`), uid)
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserProfile{}, errUserNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *sqlStore) CreateUser(ctx context.Context, user model.UserProfile) (model.UserProfile, error) {
	if strings.TrimSpace(user.UID) == "" {
		return model.UserProfile{}, apperr.Validation("uid is required")
	}
	if user.Role == "" {
		user.Role = model.RoleViewer
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?)`),
		user.UID, user.Email, user.DisplayName, string(user.Role), s.timeArg(user.CreatedAt), s.timeArg(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.UserProfile{}, apperr.Validation("user already exists")
		}
		return model.UserProfile{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *sqlStore) UpdateUserRole(ctx context.Context, uid string, role model.Role) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET role = ?, updated_at = ? WHERE uid = ?`),
		string(role), s.timeArg(time.Now().UTC()), uid,
	)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return expectOneRow(res, errUserNotFound)
}

func (s *sqlStore) CreateCredential(ctx context.Context, cred model.Credential) (model.Credential, error) {
	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	if cred.UID == "" {
		cred.UID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO credentials (`+credColumns+`) VALUES (?,?,?,?,?)`),
		cred.UID, cred.Email, cred.DisplayName, cred.PasswordHash, s.timeArg(cred.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Credential{}, errEmailTaken
		}
		return model.Credential{}, fmt.Errorf("create credential: %w", err)
	}
	return cred, nil
}

func (s *sqlStore) GetCredentialByEmail(ctx context.Context, email string) (model.Credential, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+credColumns+` FROM credentials WHERE email = ?`),
		strings.ToLower(strings.TrimSpace(email)))
	var c model.Credential
	var createdAt any
	err := row.Scan(&c.UID, &c.Email, &c.DisplayName, &c.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, errCredentialNotFound
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	c.CreatedAt = scanTime(createdAt)
	return c, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func expectOneRow(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func scanLeagueRow(scanner rowScanner) (model.League, error) {
	var l model.League
	var createdAt any
	if err := scanner.Scan(&l.ID, &l.Name, &createdAt); err != nil {
		return model.League{}, err
	}
	l.CreatedAt = scanTime(createdAt)
	return l, nil
}

func scanTeamRow(scanner rowScanner) (model.Team, error) {
	var t model.Team
	err := scanner.Scan(&t.ID, &t.LeagueID, &t.Name, &t.Rank, &t.Played, &t.Won, &t.Drawn, &t.Lost,
		&t.GoalsScored, &t.GoalsConceded, &t.GoalDifference, &t.Points)
	return t, err
}

func scanMatchRow(scanner rowScanner) (model.Match, error) {
	var m model.Match
	var dateTime any
	var home, away sql.NullInt64
	if err := scanner.Scan(&m.ID, &m.LeagueID, &m.HomeTeam, &m.AwayTeam, &m.Location, &dateTime, &home, &away); err != nil {
		return model.Match{}, err
	}
	m.DateTime = scanTime(dateTime)
	if home.Valid {
		m.HomeScore = intPtr(int(home.Int64))
	}
	if away.Valid {
		m.AwayScore = intPtr(int(away.Int64))
	}
	return m, nil
}

func scanUserRow(scanner rowScanner) (model.UserProfile, error) {
	var u model.UserProfile
	var role string
	var createdAt, updatedAt any
	if err := scanner.Scan(&u.UID, &u.Email, &u.DisplayName, &role, &createdAt, &updatedAt); err != nil {
		return model.UserProfile{}, err
	}
	u.Role = model.Role(role)
	u.CreatedAt = scanTime(createdAt)
	u.UpdatedAt = scanTime(updatedAt)
	return u, nil
}

// scanTime accepts the TEXT timestamps SQLite returns and the native
// timestamps Postgres returns.
func scanTime(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v.UTC()
	case string:
		return parseTimeString(v)
	case []byte:
		return parseTimeString(string(v))
	}
	return time.Time{}
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
