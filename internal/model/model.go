package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCreator       Role = "Creator"
	RoleAdministrator Role = "Administrator"
	RoleMember        Role = "Member"
	RoleViewer        Role = "Viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleAdministrator, RoleMember, RoleViewer:
		return true
	}
	return false
}

type League struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Team struct {
	ID             string `json:"id" bson:"_id"`
	LeagueID       string `json:"leagueId" bson:"leagueId"`
	Name           string `json:"name" bson:"name"`
	Rank           int    `json:"rank" bson:"rank"`
	Played         int    `json:"played" bson:"played"`
	Won            int    `json:"won" bson:"won"`
	Drawn          int    `json:"drawn" bson:"drawn"`
	Lost           int    `json:"lost" bson:"lost"`
	GoalsScored    int    `json:"goalsScored" bson:"goalsScored"`
	GoalsConceded  int    `json:"goalsConceded" bson:"goalsConceded"`
	GoalDifference int    `json:"goalDifference" bson:"goalDifference"`
	Points         int    `json:"points" bson:"points"`
}

type Match struct {
	ID        string    `json:"id" bson:"_id"`
	LeagueID  string    `json:"leagueId" bson:"leagueId"`
	HomeTeam  string    `json:"homeTeam" bson:"homeTeam"`
	AwayTeam  string    `json:"awayTeam" bson:"awayTeam"`
	Location  string    `json:"location" bson:"location"`
	DateTime  time.Time `json:"dateTime" bson:"dateTime"`
	HomeScore *int      `json:"homeScore,omitempty" bson:"homeScore,omitempty"`
	AwayScore *int      `json:"awayScore,omitempty" bson:"awayScore,omitempty"`
}

func (m Match) HasResult() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Involves reports whether the team name plays in the match. Matches
// reference teams by name, so the comparison ignores case.
func (m Match) Involves(teamName string) bool {
	return strings.EqualFold(m.HomeTeam, teamName) || strings.EqualFold(m.AwayTeam, teamName)
}

type UserProfile struct {
	UID         string    `json:"uid" bson:"_id"`
	Email       string    `json:"email" bson:"email"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	Role        Role      `json:"role" bson:"role"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u UserProfile) Name() string {
	name := strings.TrimSpace(u.DisplayName)
	if name == "" {
		return u.Email
	}
	return name
}

// Credential is a local email and password account. Email is stored lower
// case and is unique.
type Credential struct {
	UID          string    `json:"uid" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	DisplayName  string    `json:"displayName" bson:"displayName"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
