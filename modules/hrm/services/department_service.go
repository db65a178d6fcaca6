package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/modules/hrm/validators"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/hierarchy"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
	"github.com/iota-uz/iota-admin/pkg/viewcache"
)

const (
	defaultSort  = string(department.NameField)
	hierarchyKey = "hierarchy"
)

type DepartmentService struct {
	repo        department.Repository
	users       user.Repository
	tx          repo.Transactor
	publisher   eventbus.EventBus
	cache       viewcache.Cache
	createChain *validation.Chain[department.CreateParams]
	updateChain *validation.Chain[department.UpdateInput]
	opts        Options
}

func NewDepartmentService(
	repository department.Repository,
	users user.Repository,
	tx repo.Transactor,
	publisher eventbus.EventBus,
	cache viewcache.Cache,
	opts Options,
) *DepartmentService {
	v := validators.NewDepartmentValidators(repository)
	return &DepartmentService{
		repo:        repository,
		users:       users,
		tx:          tx,
		publisher:   publisher,
		cache:       cache,
		createChain: v.CreateChain(),
		updateChain: v.UpdateChain(),
		opts:        opts,
	}
}

func (s *DepartmentService) invalidate() {
	// user details embed the department name
	viewcache.Publish(s.publisher, viewcache.PathDepartments, viewcache.PathUsers)
}

func (s *DepartmentService) Create(ctx context.Context, params department.CreateParams) (department.Department, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Description = strings.TrimSpace(params.Description)

	created, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (department.Department, error) {
		if err := s.createChain.Run(txCtx, params); err != nil {
			return department.Department{}, err
		}
		now := s.opts.now()
		return s.repo.Create(txCtx, department.Department{
			ID:          uuid.New(),
			Name:        params.Name,
			Description: params.Description,
			ParentID:    params.ParentID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		return department.Department{}, fail(ctx, "create", err, serrors.CreateError)
	}

	s.publisher.Publish(department.CreatedTopic, created)
	s.invalidate()
	return created, nil
}

// Update applies the provided fields. Moving a department under itself or
// any of its descendants is rejected with CIRCULAR_HIERARCHY.
func (s *DepartmentService) Update(ctx context.Context, id uuid.UUID, params department.UpdateParams) (department.Department, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}
	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		params.Description = &description
	}

	var before department.Department
	updated, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (department.Department, error) {
		if params.ParentID.Value != nil {
			if err := s.repo.LockHierarchy(txCtx); err != nil {
				return department.Department{}, err
			}
		}
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return department.Department{}, err
		}
		before = current
		if err := s.updateChain.Run(txCtx, department.UpdateInput{ID: id, Params: params}); err != nil {
			return department.Department{}, err
		}
		next := params.Apply(current)
		if next.SameState(current) {
			return current, nil
		}
		next.UpdatedAt = s.opts.now()
		return s.repo.Update(txCtx, next)
	})
	if err != nil {
		return department.Department{}, fail(ctx, "update", err, serrors.UpdateError)
	}

	if !updated.SameState(before) {
		s.publisher.Publish(department.UpdatedTopic, updated)
		s.invalidate()
	}
	return updated, nil
}

// Delete refuses while users are assigned or child departments exist.
func (s *DepartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (department.Department, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return department.Department{}, err
		}
		users, err := s.users.CountInDepartment(txCtx, id)
		if err != nil {
			return department.Department{}, err
		}
		if users > 0 {
			return department.Department{}, serrors.New(serrors.HasUsers, "reassign the department's users before deleting")
		}
		children, err := s.repo.CountChildren(txCtx, id)
		if err != nil {
			return department.Department{}, err
		}
		if children > 0 {
			return department.Department{}, serrors.New(serrors.HasChildren, "move or delete the child departments first")
		}
		return current, s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return fail(ctx, "delete", err, serrors.DeleteError)
	}

	s.publisher.Publish(department.DeletedTopic, deleted)
	s.invalidate()
	return nil
}

func (s *DepartmentService) GetByID(ctx context.Context, id uuid.UUID) (department.Details, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return department.Details{}, fail(ctx, "get", err, serrors.FetchError)
	}
	details := department.Details{Department: d, Children: []department.Ref{}}
	if d.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *d.ParentID)
		switch {
		case err == nil:
			ref := parent.Ref()
			details.Parent = &ref
		case !errors.Is(err, department.ErrNotFound):
			return department.Details{}, fail(ctx, "get", err, serrors.FetchError)
		}
	}
	children, err := s.repo.Children(ctx, id)
	if err != nil {
		return department.Details{}, fail(ctx, "get", err, serrors.FetchError)
	}
	for _, c := range children {
		details.Children = append(details.Children, c.Ref())
	}
	if details.UserCount, err = s.users.CountInDepartment(ctx, id); err != nil {
		return department.Details{}, fail(ctx, "get", err, serrors.FetchError)
	}
	return details, nil
}

func (s *DepartmentService) List(ctx context.Context, params department.FindParams) (repo.Page[department.Department], error) {
	params.Pagination = s.opts.paginate(params.Pagination)
	departments, total, err := s.repo.List(ctx, &params)
	if err != nil {
		return repo.Page[department.Department]{}, fail(ctx, "list", err, serrors.FetchError)
	}
	return repo.NewPage(departments, total, params.Pagination), nil
}

func (s *DepartmentService) All(ctx context.Context) ([]department.Department, error) {
	departments, err := s.repo.All(ctx)
	if err != nil {
		return nil, fail(ctx, "list", err, serrors.FetchError)
	}
	return departments, nil
}

// Hierarchy returns the department forest. Count is the number of users
// assigned directly and Total adds every descendant's users.
func (s *DepartmentService) Hierarchy(ctx context.Context) ([]*hierarchy.Node[department.Department], error) {
	forest, err := viewcache.Load(ctx, s.cache, viewcache.PathDepartments, hierarchyKey,
		func(ctx context.Context) ([]*hierarchy.Node[department.Department], error) {
			departments, err := s.repo.All(ctx)
			if err != nil {
				return nil, err
			}
			counts, err := s.users.CountByDepartment(ctx)
			if err != nil {
				return nil, err
			}
			return hierarchy.BuildForest(departments,
				func(d department.Department) uuid.UUID { return d.ID },
				func(d department.Department) *uuid.UUID { return d.ParentID },
				hierarchy.WithCount(func(d department.Department) int { return counts[d.ID] }),
			), nil
		})
	if err != nil {
		return nil, fail(ctx, "hierarchy", err, serrors.FetchError)
	}
	return forest, nil
}
