// Package auth resolves who is calling and what their role allows.
package auth

import (
	"context"

	"statshub-app/internal/model"
)

// Identity is what an identity provider knows about a signed-in user.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type Provider interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// Session is the per-request view of the caller. Handlers receive it
// through the request context.
type Session struct {
	Identity Identity
	Profile  model.UserProfile
}

func (s Session) Role() model.Role {
	return s.Profile.Role
}

type sessionContextKey struct{}

func ContextWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}
