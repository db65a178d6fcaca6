package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
)

type userOrganizations struct {
	members organization.MemberRepository
}

// NewUserOrganizations exposes organization ownership to the user delete guard.
func NewUserOrganizations(members organization.MemberRepository) user.Organizations {
	return &userOrganizations{members: members}
}

func (u *userOrganizations) Owned(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	memberships, err := u.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var owned []uuid.UUID
	for _, m := range memberships {
		if m.Role == organization.RoleOwner {
			owned = append(owned, m.OrganizationID)
		}
	}
	return owned, nil
}
