package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	"github.com/iota-uz/iota-admin/modules/core/validators"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/hierarchy"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
	"github.com/iota-uz/iota-admin/pkg/viewcache"
)

type UserService struct {
	repo          user.Repository
	identity      identity.Provider
	departments   user.Departments
	organizations user.Organizations
	tx            repo.Transactor
	publisher   eventbus.EventBus
	createChain *validation.Chain[user.CreateParams]
	updateChain *validation.Chain[user.UpdateInput]
	opts        Options
}

func NewUserService(
	repository user.Repository,
	provider identity.Provider,
	departments user.Departments,
	organizations user.Organizations,
	tx repo.Transactor,
	publisher eventbus.EventBus,
	opts Options,
) *UserService {
	v := validators.NewUserValidators(repository, departments)
	return &UserService{
		repo:          repository,
		identity:      provider,
		departments:   departments,
		organizations: organizations,
		tx:            tx,
		publisher:     publisher,
		createChain:   v.CreateChain(),
		updateChain:   v.UpdateChain(),
		opts:          opts,
	}
}

func (s *UserService) invalidate() {
	// department views carry user counts
	viewcache.Publish(s.publisher, viewcache.PathUsers, viewcache.PathDepartments)
}

// Create mints the identity account and the user record in one transaction.
// The account id becomes the user id.
func (s *UserService) Create(ctx context.Context, params user.CreateParams) (user.User, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = validation.NormalizeEmail(params.Email)
	if params.Role == "" {
		params.Role = user.RoleUser
	}
	role, err := user.NewRole(string(params.Role))
	if err != nil {
		return user.User{}, fail(ctx, "create", err, serrors.CreateError)
	}
	params.Role = role

	created, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (user.User, error) {
		if err := s.createChain.Run(txCtx, params); err != nil {
			return user.User{}, err
		}
		account, err := s.identity.CreateAccount(txCtx, params.Email, params.Password)
		if err != nil {
			return user.User{}, err
		}
		now := s.opts.now()
		return s.repo.Create(txCtx, user.User{
			ID:           account.ID,
			Name:         params.Name,
			Email:        params.Email,
			Role:         params.Role,
			Status:       user.StatusActive,
			DepartmentID: params.DepartmentID,
			ManagerID:    params.ManagerID,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if err != nil {
		return user.User{}, fail(ctx, "create", err, serrors.CreateError)
	}

	s.publisher.Publish(user.NewCreatedEvent(ctx, created))
	s.invalidate()
	return created, nil
}

// Update applies only the provided fields. Updating with values the user
// already holds writes nothing.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, params user.UpdateParams) (user.User, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}
	if params.Email != nil {
		email := validation.NormalizeEmail(*params.Email)
		params.Email = &email
	}
	if params.Role != nil {
		role, err := user.NewRole(string(*params.Role))
		if err != nil {
			return user.User{}, fail(ctx, "update", err, serrors.UpdateError)
		}
		params.Role = &role
	}

	return s.mutate(ctx, "update", id, func(txCtx context.Context, current user.User) (user.User, error) {
		if params.ManagerID.Value != nil {
			if err := s.repo.LockHierarchy(txCtx); err != nil {
				return user.User{}, err
			}
		}
		if err := s.updateChain.Run(txCtx, user.UpdateInput{ID: id, Params: params}); err != nil {
			return user.User{}, err
		}
		next := params.Apply(current)
		if next.Email != current.Email {
			if err := s.identity.UpdateEmail(txCtx, id, next.Email); err != nil {
				return user.User{}, err
			}
		}
		return next, nil
	})
}

func (s *UserService) UpdateStatus(ctx context.Context, id uuid.UUID, status user.Status) (user.User, error) {
	status, err := user.NewStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if err != nil {
		return user.User{}, fail(ctx, "update_status", err, serrors.UpdateError)
	}
	return s.mutate(ctx, "update_status", id, func(_ context.Context, current user.User) (user.User, error) {
		current.Status = status
		return current, nil
	})
}

func (s *UserService) Ban(ctx context.Context, id uuid.UUID, params user.BanParams) (user.User, error) {
	return s.mutate(ctx, "ban", id, func(_ context.Context, current user.User) (user.User, error) {
		current.Banned = true
		current.BanReason = strings.TrimSpace(params.Reason)
		current.BanExpires = params.ExpiresAt
		return current, nil
	})
}

func (s *UserService) Unban(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.mutate(ctx, "unban", id, func(_ context.Context, current user.User) (user.User, error) {
		current.Banned = false
		current.BanReason = ""
		current.BanExpires = nil
		return current, nil
	})
}

// mutate loads the user, lets fn derive the next state and persists it when
// it differs, all in one transaction.
func (s *UserService) mutate(
	ctx context.Context,
	op string,
	id uuid.UUID,
	fn func(txCtx context.Context, current user.User) (user.User, error),
) (user.User, error) {
	var before user.User
	updated, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (user.User, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return user.User{}, err
		}
		before = current
		next, err := fn(txCtx, current)
		if err != nil {
			return user.User{}, err
		}
		if next.SameState(current) {
			return current, nil
		}
		next.UpdatedAt = s.opts.now()
		return s.repo.Update(txCtx, next)
	})
	if err != nil {
		return user.User{}, fail(ctx, op, err, serrors.UpdateError)
	}

	if !updated.SameState(before) {
		s.publisher.Publish(user.NewUpdatedEvent(ctx, before, updated))
		s.invalidate()
	}
	return updated, nil
}

// Delete refuses while anyone reports to the user or the user owns an
// organization, then removes the user and its identity account.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (user.User, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return user.User{}, err
		}
		subordinates, err := s.repo.CountSubordinates(txCtx, id)
		if err != nil {
			return user.User{}, err
		}
		if subordinates > 0 {
			return user.User{}, serrors.New(serrors.HasSubordinates, "reassign the user's subordinates before deleting")
		}
		owned, err := s.organizations.Owned(txCtx, id)
		if err != nil {
			return user.User{}, err
		}
		if len(owned) > 0 {
			return user.User{}, serrors.New(serrors.CannotRemoveOwner, "the user owns an organization; delete the organization first")
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return user.User{}, err
		}
		if err := s.identity.DeleteAccount(txCtx, id); err != nil && !errorsIsAccountMissing(err) {
			return user.User{}, err
		}
		return current, nil
	})
	if err != nil {
		return fail(ctx, "delete", err, serrors.DeleteError)
	}

	s.publisher.Publish(user.NewDeletedEvent(ctx, deleted))
	s.invalidate()
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.Details, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.Details{}, fail(ctx, "get", err, serrors.FetchError)
	}
	details := user.Details{User: u, Subordinates: []user.Summary{}}

	if u.ManagerID != nil {
		manager, err := s.repo.GetByID(ctx, *u.ManagerID)
		switch {
		case err == nil:
			summary := manager.Summary()
			details.Manager = &summary
		case !errorsIsUserMissing(err):
			return user.Details{}, fail(ctx, "get", err, serrors.FetchError)
		}
	}
	if u.DepartmentID != nil {
		ref, found, err := s.departments.Lookup(ctx, *u.DepartmentID)
		if err != nil {
			return user.Details{}, fail(ctx, "get", err, serrors.FetchError)
		}
		if found {
			details.Department = &ref
		}
	}
	subordinates, err := s.repo.Subordinates(ctx, id)
	if err != nil {
		return user.Details{}, fail(ctx, "get", err, serrors.FetchError)
	}
	for _, sub := range subordinates {
		details.Subordinates = append(details.Subordinates, sub.Summary())
	}
	return details, nil
}

func (s *UserService) List(ctx context.Context, params user.FindParams) (repo.Page[user.User], error) {
	params.Pagination = s.opts.paginate(params.Pagination, user.SortFields, string(user.CreatedAtField))
	users, total, err := s.repo.List(ctx, &params)
	if err != nil {
		return repo.Page[user.User]{}, fail(ctx, "list", err, serrors.FetchError)
	}
	return repo.NewPage(users, total, params.Pagination), nil
}

// All returns every user, used to assemble the reporting forest.
func (s *UserService) All(ctx context.Context) ([]user.User, error) {
	users, err := s.repo.All(ctx)
	if err != nil {
		return nil, fail(ctx, "list", err, serrors.FetchError)
	}
	return users, nil
}

// Hierarchy assembles the reporting forest. Total counts everyone in a
// user's reporting line including the user.
func (s *UserService) Hierarchy(ctx context.Context) ([]*hierarchy.Node[user.User], error) {
	users, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.BuildForest(users,
		func(u user.User) uuid.UUID { return u.ID },
		func(u user.User) *uuid.UUID { return u.ManagerID },
		hierarchy.WithCount(func(user.User) int { return 1 }),
	), nil
}
