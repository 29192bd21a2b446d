package auth

import (
	"context"
	"errors"
	"strings"

	"statshub-app/internal/apperr"
	"statshub-app/internal/model"
	"statshub-app/internal/store"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Profiles struct {
	store store.Store
	clock clockwork.Clock
}

func NewProfiles(st store.Store, clock clockwork.Clock) *Profiles {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Profiles{store: st, clock: clock}
}

// EnsureProfile returns the stored profile for the identity, creating a
// Viewer profile on first sign-in.
func (p *Profiles) EnsureProfile(ctx context.Context, id Identity) (model.UserProfile, error) {
	if strings.TrimSpace(id.UID) == "" {
		return model.UserProfile{}, apperr.Validation("identity has no uid")
	}
	profile, err := p.store.GetUser(ctx, id.UID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return model.UserProfile{}, apperr.Persistence("load profile", err)
	}
	now := p.clock.Now().UTC()
	profile, err = p.store.CreateUser(ctx, model.UserProfile{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Role:        model.RoleViewer,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if errors.Is(err, apperr.ErrValidation) {
		// Lost a race with a concurrent first request for the same user.
		return p.store.GetUser(ctx, id.UID)
	}
	if err != nil {
		return model.UserProfile{}, apperr.Persistence("create profile", err)
	}
	log.Ctx(ctx).Info().Str("uid", profile.UID).Msg("created viewer profile")
	return profile, nil
}

func (p *Profiles) List(ctx context.Context) ([]model.UserProfile, error) {
	users, err := p.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	return users, nil
}

// UpdateRole changes a user's role. Only a Creator may do this, and a
// Creator cannot take the Creator role away from themselves.
func (p *Profiles) UpdateRole(ctx context.Context, actor Session, uid string, role model.Role) (model.UserProfile, error) {
	if err := Require(actor, PermManageUsers); err != nil {
		return model.UserProfile{}, err
	}
	if strings.TrimSpace(uid) == "" {
		return model.UserProfile{}, apperr.Validation("uid is required")
	}
	if !role.Valid() {
		return model.UserProfile{}, apperr.Validation("unknown role %q", role)
	}
	if uid == actor.Profile.UID && role != model.RoleCreator {
		return model.UserProfile{}, apperr.Validation("a creator cannot demote themselves")
	}
	if err := p.store.UpdateUserRole(ctx, uid, role); err != nil {
		return model.UserProfile{}, apperr.Persistence("update role", err)
	}
	updated, err := p.store.GetUser(ctx, uid)
	if err != nil {
		return model.UserProfile{}, apperr.Persistence("load profile", err)
	}
	log.Ctx(ctx).Info().Str("uid", uid).Str("role", string(role)).Str("by", actor.Profile.UID).Msg("user role updated")
	return updated, nil
}

// Bootstrap promotes the given uid to Creator. It is used once at startup so
// a fresh deployment has someone who can manage roles.
func (p *Profiles) Bootstrap(ctx context.Context, id Identity) (model.UserProfile, error) {
	profile, err := p.EnsureProfile(ctx, id)
	if err != nil {
		return model.UserProfile{}, err
	}
	if profile.Role == model.RoleCreator {
		return profile, nil
	}
	if err := p.store.UpdateUserRole(ctx, id.UID, model.RoleCreator); err != nil {
		return model.UserProfile{}, apperr.Persistence("promote creator", err)
	}
	profile.Role = model.RoleCreator
	return profile, nil
}
