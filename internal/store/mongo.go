package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"statshub-app/internal/apperr"
	"statshub-app/internal/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps each record kind in its own collection, mirroring the
// document layout the league app was first built on. ApplyRanks needs a
// replica set or sharded cluster because it runs in a transaction.
type MongoStore struct {
	client  *mongo.Client
	leagues *mongo.Collection
	teams   *mongo.Collection
	matches *mongo.Collection
	users   *mongo.Collection
	creds   *mongo.Collection
}

type MongoOptions struct {
	Database string
}

func NewMongoStore(ctx context.Context, uri string, opts MongoOptions) (*MongoStore, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongo uri is required")
	}
	database := strings.TrimSpace(opts.Database)
	if database == "" {
		database = "statshub"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	s := &MongoStore{
		client:  client,
		leagues: db.Collection("leagues"),
		teams:   db.Collection("teams"),
		matches: db.Collection("matches"),
		users:   db.Collection("users"),
		creds:   db.Collection("credentials"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.teams.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "leagueId", Value: 1}, {Key: "rank", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create team index: %w", err)
	}
	if _, err := s.matches.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "leagueId", Value: 1}, {Key: "dateTime", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create match index: %w", err)
	}
	if _, err := s.creds.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create credential index: %w", err)
	}
	return nil
}

func (s *MongoStore) ListLeagues(ctx context.Context) ([]model.League, error) {
	cur, err := s.leagues.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	leagues := []model.League{}
	if err := cur.All(ctx, &leagues); err != nil {
		return nil, fmt.Errorf("decode leagues: %w", err)
	}
	return leagues, nil
}

func (s *MongoStore) GetLeague(ctx context.Context, id string) (model.League, error) {
	var l model.League
	err := s.leagues.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.League{}, errLeagueNotFound
	}
	if err != nil {
		return model.League{}, fmt.Errorf("get league: %w", err)
	}
	return l, nil
}

func (s *MongoStore) CreateLeague(ctx context.Context, league model.League) (model.League, error) {
	if league.ID == "" {
		league.ID = uuid.NewString()
	}
	if league.CreatedAt.IsZero() {
		league.CreatedAt = time.Now().UTC()
	}
	if _, err := s.leagues.InsertOne(ctx, league); err != nil {
		return model.League{}, fmt.Errorf("create league: %w", err)
	}
	return league, nil
}

func (s *MongoStore) ListTeams(ctx context.Context, leagueID string) ([]model.Team, error) {
	sort := bson.D{{Key: "rank", Value: 1}, {Key: "name", Value: 1}}
	cur, err := s.teams.Find(ctx, bson.M{"leagueId": leagueID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teams := []model.Team{}
	if err := cur.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("decode teams: %w", err)
	}
	return teams, nil
}

func (s *MongoStore) GetTeam(ctx context.Context, leagueID, teamID string) (model.Team, error) {
	var t model.Team
	err := s.teams.FindOne(ctx, bson.M{"_id": teamID, "leagueId": leagueID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Team{}, errTeamNotFound
	}
	if err != nil {
		return model.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

func (s *MongoStore) CountTeams(ctx context.Context, leagueID string) (int, error) {
	n, err := s.teams.CountDocuments(ctx, bson.M{"leagueId": leagueID})
	if err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return int(n), nil
}

func (s *MongoStore) CreateTeam(ctx context.Context, team model.Team) (model.Team, error) {
	if _, err := s.GetLeague(ctx, team.LeagueID); err != nil {
		return model.Team{}, err
	}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if _, err := s.teams.InsertOne(ctx, team); err != nil {
		return model.Team{}, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

func (s *MongoStore) UpdateTeamStats(ctx context.Context, team model.Team) error {
	res, err := s.teams.UpdateOne(ctx,
		bson.M{"_id": team.ID, "leagueId": team.LeagueID},
		bson.M{"$set": bson.M{
			"played":         team.Played,
			"won":            team.Won,
			"drawn":          team.Drawn,
			"lost":           team.Lost,
			"goalsScored":    team.GoalsScored,
			"goalsConceded":  team.GoalsConceded,
			"goalDifference": team.GoalDifference,
			"points":         team.Points,
		}},
	)
	if err != nil {
		return fmt.Errorf("update team stats: %w", err)
	}
	if res.MatchedCount == 0 {
		return errTeamNotFound
	}
	return nil
}

func (s *MongoStore) ApplyRanks(ctx context.Context, leagueID string, ranks map[string]int) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for id, rank := range ranks {
			res, err := s.teams.UpdateOne(sc,
				bson.M{"_id": id, "leagueId": leagueID},
				bson.M{"$set": bson.M{"rank": rank}},
			)
			if err != nil {
				return nil, fmt.Errorf("update rank for team %s: %w", id, err)
			}
			if res.MatchedCount == 0 {
				return nil, apperr.NotFound("team %s not found in league %s", id, leagueID)
			}
		}
		return nil, nil
	})
	return err
}

func (s *MongoStore) ListMatches(ctx context.Context, leagueID string) ([]model.Match, error) {
	cur, err := s.matches.Find(ctx, bson.M{"leagueId": leagueID}, options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	matches := []model.Match{}
	if err := cur.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return matches, nil
}

func (s *MongoStore) GetMatch(ctx context.Context, leagueID, matchID string) (model.Match, error) {
	var m model.Match
	err := s.matches.FindOne(ctx, bson.M{"_id": matchID, "leagueId": leagueID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Match{}, errMatchNotFound
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func (s *MongoStore) CreateMatch(ctx context.Context, match model.Match) (model.Match, error) {
	if _, err := s.GetLeague(ctx, match.LeagueID); err != nil {
		return model.Match{}, err
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if _, err := s.matches.InsertOne(ctx, match); err != nil {
		return model.Match{}, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

func (s *MongoStore) UpdateMatchScore(ctx context.Context, leagueID, matchID string, home, away int) error {
	res, err := s.matches.UpdateOne(ctx,
		bson.M{"_id": matchID, "leagueId": leagueID},
		bson.M{"$set": bson.M{"homeScore": home, "awayScore": away}},
	)
	if err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	if res.MatchedCount == 0 {
		return errMatchNotFound
	}
	return nil
}

func (s *MongoStore) DeleteMatch(ctx context.Context, leagueID, matchID string) error {
	res, err := s.matches.DeleteOne(ctx, bson.M{"_id": matchID, "leagueId": leagueID})
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if res.DeletedCount == 0 {
		return errMatchNotFound
	}
	return nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := []model.UserProfile{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	sortUsers(users)
	return users, nil
}

func (s *MongoStore) GetUser(ctx context.Context, uid string) (model.UserProfile, error) {
	var u model.UserProfile
	err := s.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.UserProfile{}, errUserNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user model.UserProfile) (model.UserProfile, error) {
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
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.UserProfile{}, apperr.Validation("user already exists")
		}
		return model.UserProfile{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *MongoStore) UpdateUserRole(ctx context.Context, uid string, role model.Role) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{"role": string(role), "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if res.MatchedCount == 0 {
		return errUserNotFound
	}
	return nil
}

func (s *MongoStore) CreateCredential(ctx context.Context, cred model.Credential) (model.Credential, error) {
	cred.Email = strings.ToLower(strings.TrimSpace(cred.Email))
	if cred.UID == "" {
		cred.UID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now().UTC()
	}
	if _, err := s.creds.InsertOne(ctx, cred); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Credential{}, errEmailTaken
		}
		return model.Credential{}, fmt.Errorf("create credential: %w", err)
	}
	return cred, nil
}

func (s *MongoStore) GetCredentialByEmail(ctx context.Context, email string) (model.Credential, error) {
	var c model.Credential
	err := s.creds.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Credential{}, errCredentialNotFound
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	return c, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
