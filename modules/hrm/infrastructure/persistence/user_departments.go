package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
)

type userDepartments struct {
	repo department.Repository
}

// NewUserDepartments exposes the department store to user validation and
// user detail views.
func NewUserDepartments(repo department.Repository) user.Departments {
	return &userDepartments{repo: repo}
}

func (u *userDepartments) Lookup(ctx context.Context, id uuid.UUID) (user.DepartmentRef, bool, error) {
	d, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, department.ErrNotFound) {
		return user.DepartmentRef{}, false, nil
	}
	if err != nil {
		return user.DepartmentRef{}, false, err
	}
	return user.DepartmentRef{ID: d.ID, Name: d.Name}, true, nil
}
