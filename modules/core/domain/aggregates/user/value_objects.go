package user

import (
	"github.com/iota-uz/iota-admin/pkg/roles"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// NewRole accepts a bare role name or a user-scoped reference like "user:ADMIN".
// Organization-scoped references are rejected even when the name matches.
func NewRole(s string) (Role, error) {
	name, err := roles.In(s, roles.ScopeUser)
	if err != nil {
		return "", serrors.New(serrors.InvalidRole, "role must be one of USER, ADMIN")
	}
	r := Role(name)
	if !r.IsValid() {
		return "", serrors.New(serrors.InvalidRole, "role must be one of USER, ADMIN")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) Ref() roles.Ref {
	return roles.Ref{Scope: roles.ScopeUser, Name: string(r)}
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", serrors.New(serrors.InvalidStatus, "status must be one of ACTIVE, INACTIVE, SUSPENDED")
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}
