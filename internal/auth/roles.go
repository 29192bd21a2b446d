package auth

import (
	"statshub-app/internal/apperr"
	"statshub-app/internal/model"
)

type Permission string

const (
	PermView          Permission = "view"
	PermCreateLeague  Permission = "league:create"
	PermRegisterTeam  Permission = "team:register"
	PermManageMatches Permission = "match:manage"
	PermUpdateStats   Permission = "team:stats"
	PermRecordScore   Permission = "match:score"
	PermRecompute     Permission = "standings:recompute"
	PermManageUsers   Permission = "users:manage"
	PermRecomputeAll  Permission = "standings:recompute-all"
)

var (
	everyone   = []model.Role{model.RoleCreator, model.RoleAdministrator, model.RoleMember, model.RoleViewer}
	editors    = []model.Role{model.RoleCreator, model.RoleAdministrator, model.RoleMember}
	organisers = []model.Role{model.RoleCreator, model.RoleAdministrator}
	owners     = []model.Role{model.RoleCreator}
)

var permissions = map[Permission][]model.Role{
	PermView:          everyone,
	PermCreateLeague:  owners,
	PermRegisterTeam:  organisers,
	PermManageMatches: organisers,
	PermUpdateStats:   editors,
	PermRecordScore:   editors,
	PermRecompute:     editors,
	PermManageUsers:   owners,
	PermRecomputeAll:  owners,
}

func Allows(role model.Role, perm Permission) bool {
	for _, r := range permissions[perm] {
		if r == role {
			return true
		}
	}
	return false
}

func Require(session Session, perm Permission) error {
	if session.Profile.UID == "" {
		return apperr.ErrUnauthenticated
	}
	if !Allows(session.Role(), perm) {
		return apperr.ErrForbidden
	}
	return nil
}
