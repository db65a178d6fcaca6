package validators

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/pkg/hierarchy"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
)

const (
	CreateUserChain = "user.create"
	UpdateUserChain = "user.update"
)

// UserValidators builds the validation chains of user mutations. Every
// validator only reads the store.
type UserValidators struct {
	repo        user.Repository
	departments user.Departments
	managers    *hierarchy.Detector[uuid.UUID]
}

func NewUserValidators(repo user.Repository, departments user.Departments) *UserValidators {
	return &UserValidators{
		repo:        repo,
		departments: departments,
		managers:    hierarchy.NewDetector[uuid.UUID](repo.ManagerOf),
	}
}

func (v *UserValidators) CreateChain() *validation.Chain[user.CreateParams] {
	return validation.NewChain[user.CreateParams](CreateUserChain,
		validation.Check(requiredUserFields),
		validation.ValidatorFunc[user.CreateParams](func(ctx context.Context, p user.CreateParams) (validation.Result, error) {
			return v.emailAvailable(ctx, p.Email, uuid.Nil)
		}),
		validation.Check(func(p user.CreateParams) validation.Result {
			return validation.Password(p.Password)
		}),
		validation.ValidatorFunc[user.CreateParams](func(ctx context.Context, p user.CreateParams) (validation.Result, error) {
			return v.referencesExist(ctx, p.ManagerID, p.DepartmentID)
		}),
	)
}

func (v *UserValidators) UpdateChain() *validation.Chain[user.UpdateInput] {
	return validation.NewChain[user.UpdateInput](UpdateUserChain,
		validation.ValidatorFunc[user.UpdateInput](v.managerHierarchy),
		validation.ValidatorFunc[user.UpdateInput](func(ctx context.Context, in user.UpdateInput) (validation.Result, error) {
			return v.referencesExist(ctx, in.Params.ManagerID.Value, in.Params.DepartmentID.Value)
		}),
		validation.Check(func(in user.UpdateInput) validation.Result {
			if in.Params.Name != nil {
				return validation.Required(*in.Params.Name, serrors.RequiredName, "name is required")
			}
			return validation.OK()
		}),
		validation.ValidatorFunc[user.UpdateInput](func(ctx context.Context, in user.UpdateInput) (validation.Result, error) {
			if in.Params.Email == nil {
				return validation.OK(), nil
			}
			return v.emailAvailable(ctx, *in.Params.Email, in.ID)
		}),
	)
}

func requiredUserFields(p user.CreateParams) validation.Result {
	if r := validation.Required(p.Name, serrors.RequiredName, "name is required"); r.Failed() {
		return r
	}
	if r := validation.Required(p.Email, serrors.RequiredEmail, "email is required"); r.Failed() {
		return r
	}
	return validation.Required(p.Password, serrors.RequiredPassword, "password is required")
}

// emailAvailable checks the format and that no user other than self owns email.
func (v *UserValidators) emailAvailable(ctx context.Context, email string, self uuid.UUID) (validation.Result, error) {
	if r := validation.Email(email); r.Failed() {
		return r, nil
	}
	existing, err := v.repo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if errors.Is(err, user.ErrNotFound) {
		return validation.OK(), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	if existing.ID == self {
		return validation.OK(), nil
	}
	return validation.Fail(serrors.EmailExists, "a user with this email already exists"), nil
}

func (v *UserValidators) managerHierarchy(ctx context.Context, in user.UpdateInput) (validation.Result, error) {
	manager := in.Params.ManagerID
	if !manager.Set || manager.Value == nil {
		return validation.OK(), nil
	}
	cycle, err := v.managers.WouldCreateCycle(ctx, in.ID, *manager.Value)
	if err != nil {
		return validation.Result{}, err
	}
	if cycle {
		return validation.Fail(serrors.CircularReference, "a user cannot report to themselves or to one of their subordinates"), nil
	}
	return validation.OK(), nil
}

func (v *UserValidators) referencesExist(ctx context.Context, managerID, departmentID *uuid.UUID) (validation.Result, error) {
	if managerID != nil {
		_, found, err := v.repo.ManagerOf(ctx, *managerID)
		if err != nil {
			return validation.Result{}, err
		}
		if !found {
			return validation.Fail(serrors.ManagerNotFound, "manager not found"), nil
		}
	}
	if departmentID != nil {
		_, found, err := v.departments.Lookup(ctx, *departmentID)
		if err != nil {
			return validation.Result{}, err
		}
		if !found {
			return validation.Fail(serrors.DepartmentNotFound, "department not found"), nil
		}
	}
	return validation.OK(), nil
}
