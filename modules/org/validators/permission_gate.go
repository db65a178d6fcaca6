package validators

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
)

// MembershipLookup is the part of the member store the gate reads.
type MembershipLookup interface {
	Get(ctx context.Context, organizationID, userID uuid.UUID) (organization.Member, error)
}

// PermissionGate admits an actor whose membership role in the organization is
// one of the allowed roles.
type PermissionGate struct {
	members MembershipLookup
}

func NewPermissionGate(members MembershipLookup) *PermissionGate {
	return &PermissionGate{members: members}
}

func (g *PermissionGate) Authorize(
	ctx context.Context,
	organizationID, actorID uuid.UUID,
	allowed ...organization.Role,
) (validation.Result, error) {
	m, err := g.members.Get(ctx, organizationID, actorID)
	if errors.Is(err, organization.ErrMemberNotFound) {
		return denied(), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	if !slices.Contains(allowed, m.Role) {
		return denied(), nil
	}
	return validation.OK(), nil
}

func denied() validation.Result {
	return validation.Fail(serrors.InsufficientPermissions, "you do not have permission to perform this action")
}

// Gate places the permission gate in a chain. target extracts the
// organization and the actor from the chain input.
func Gate[T any](g *PermissionGate, target func(T) (organizationID, actorID uuid.UUID), allowed ...organization.Role) validation.Validator[T] {
	return validation.ValidatorFunc[T](func(ctx context.Context, in T) (validation.Result, error) {
		organizationID, actorID := target(in)
		return g.Authorize(ctx, organizationID, actorID, allowed...)
	})
}
