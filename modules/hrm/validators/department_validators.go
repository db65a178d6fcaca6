package validators

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/hierarchy"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
)

const (
	CreateDepartmentChain = "department.create"
	UpdateDepartmentChain = "department.update"
)

type DepartmentValidators struct {
	repo    department.Repository
	parents *hierarchy.Detector[uuid.UUID]
}

func NewDepartmentValidators(repo department.Repository) *DepartmentValidators {
	return &DepartmentValidators{
		repo:    repo,
		parents: hierarchy.NewDetector[uuid.UUID](repo.ParentOf),
	}
}

func (v *DepartmentValidators) CreateChain() *validation.Chain[department.CreateParams] {
	return validation.NewChain[department.CreateParams](CreateDepartmentChain,
		validation.Check(func(p department.CreateParams) validation.Result {
			return requiredName(p.Name)
		}),
		validation.ValidatorFunc[department.CreateParams](func(ctx context.Context, p department.CreateParams) (validation.Result, error) {
			return v.parentExists(ctx, p.ParentID)
		}),
	)
}

// UpdateChain checks a partial update. The name is only checked when
// provided since the stored one is already valid.
func (v *DepartmentValidators) UpdateChain() *validation.Chain[department.UpdateInput] {
	return validation.NewChain[department.UpdateInput](UpdateDepartmentChain,
		validation.Check(func(in department.UpdateInput) validation.Result {
			if in.Params.Name == nil {
				return validation.OK()
			}
			return requiredName(*in.Params.Name)
		}),
		validation.ValidatorFunc[department.UpdateInput](func(ctx context.Context, in department.UpdateInput) (validation.Result, error) {
			return v.parentExists(ctx, in.Params.ParentID.Value)
		}),
		validation.ValidatorFunc[department.UpdateInput](v.circularHierarchy),
	)
}

func requiredName(name string) validation.Result {
	return validation.Required(name, serrors.RequiredName, "department name is required")
}

func (v *DepartmentValidators) parentExists(ctx context.Context, parentID *uuid.UUID) (validation.Result, error) {
	if parentID == nil {
		return validation.OK(), nil
	}
	_, found, err := v.repo.ParentOf(ctx, *parentID)
	if err != nil {
		return validation.Result{}, err
	}
	if !found {
		return validation.Fail(serrors.ParentNotFound, "parent department not found"), nil
	}
	return validation.OK(), nil
}

func (v *DepartmentValidators) circularHierarchy(ctx context.Context, in department.UpdateInput) (validation.Result, error) {
	parent := in.Params.ParentID
	if !parent.Set || parent.Value == nil {
		return validation.OK(), nil
	}
	cycle, err := v.parents.WouldCreateCycle(ctx, in.ID, *parent.Value)
	if err != nil {
		return validation.Result{}, err
	}
	if cycle {
		return validation.Fail(serrors.CircularHierarchy, "a department cannot be moved under itself or one of its descendants"), nil
	}
	return validation.OK(), nil
}
