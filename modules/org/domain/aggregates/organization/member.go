package organization

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/roles"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Managers may change members and invitations.
var Managers = []Role{RoleOwner, RoleAdmin}

// NewRole accepts a bare role name or an organization-scoped reference like
// "organization:ADMIN". User-scoped references are rejected.
func NewRole(s string) (Role, error) {
	name, err := roles.In(s, roles.ScopeOrganization)
	if err != nil {
		return "", serrors.New(serrors.InvalidRole, "role must be one of OWNER, ADMIN, MEMBER")
	}
	r := Role(name)
	if !r.IsValid() {
		return "", serrors.New(serrors.InvalidRole, "role must be one of OWNER, ADMIN, MEMBER")
	}
	return r, nil
}

// NewAssignableRole is NewRole without OWNER. Ownership is only granted by
// creating the organization.
func NewAssignableRole(s string) (Role, error) {
	r, err := NewRole(s)
	if err != nil {
		return "", err
	}
	if r == RoleOwner {
		return "", serrors.New(serrors.InvalidRole, "role must be one of ADMIN, MEMBER")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

func (r Role) Ref() roles.Ref {
	return roles.Ref{Scope: roles.ScopeOrganization, Name: string(r)}
}

// Member is a membership row. Name and Email are read from the user.
type Member struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	UserID         uuid.UUID `json:"userId"`
	Role           Role      `json:"role"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"createdAt"`
}

type AddMemberParams struct {
	UserID uuid.UUID `json:"userId"`
	Role   Role      `json:"role"`
}

// MemberInput is what the membership chain validates.
type MemberInput struct {
	OrganizationID uuid.UUID
	ActorID        uuid.UUID
	UserID         uuid.UUID
	Role           Role
}
