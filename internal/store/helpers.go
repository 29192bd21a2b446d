package store

import (
	"sort"
	"strings"
	"time"

	"statshub-app/internal/apperr"
	"statshub-app/internal/model"
	"statshub-app/internal/standings"
)

var (
	errLeagueNotFound     = apperr.NotFound("league not found")
	errTeamNotFound       = apperr.NotFound("team not found")
	errMatchNotFound      = apperr.NotFound("match not found")
	errUserNotFound       = apperr.NotFound("user not found")
	errCredentialNotFound = apperr.NotFound("account not found")
	errEmailTaken         = apperr.Validation("email already registered")
)

func sortLeagues(leagues []model.League) {
	sort.Slice(leagues, func(i, j int) bool { return leagues[i].CreatedAt.After(leagues[j].CreatedAt) })
}

func sortTeams(teams []model.Team) {
	standings.ByStoredRank(teams)
}

func sortMatches(matches []model.Match) {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].DateTime.Before(matches[j].DateTime) })
}

func sortUsers(users []model.UserProfile) {
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name()) < strings.ToLower(users[j].Name())
	})
}

func timeValueString(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func intPtr(v int) *int {
	return &v
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
