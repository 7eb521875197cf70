package service

import (
	"slices"

	"github.com/stemsi/siakad-backend/internal/model"
)

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	ID   int
	Role model.Role
}

func (a Actor) IsAdmin() bool    { return a.Role == model.RoleAdmin }
func (a Actor) IsLecturer() bool { return a.Role == model.RoleLecturer }
func (a Actor) IsStudent() bool  { return a.Role == model.RoleStudent }
func (a Actor) IsStaff() bool    { return a.Role.IsStaff() }

// authorize fails with ErrForbidden unless the actor holds one of roles.
func authorize(op string, a Actor, roles ...model.Role) error {
	if a.ID <= 0 || !a.Role.Valid() || !slices.Contains(roles, a.Role) {
		return forbiddenErr(op)
	}
	return nil
}

var (
	adminOnly   = []model.Role{model.RoleAdmin}
	staffOnly   = []model.Role{model.RoleLecturer, model.RoleAdmin}
	studentOnly = []model.Role{model.RoleStudent}
	anyRole     = []model.Role{model.RoleStudent, model.RoleLecturer, model.RoleAdmin}
)
