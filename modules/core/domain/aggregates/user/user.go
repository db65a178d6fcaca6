package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/types"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	DepartmentID *uuid.UUID `json:"departmentId"`
	ManagerID    *uuid.UUID `json:"managerId"`
	Banned       bool       `json:"banned"`
	BanReason    string     `json:"banReason,omitempty"`
	BanExpires   *time.Time `json:"banExpires,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Summary is the short form used for managers and subordinates.
type Summary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

type DepartmentRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Details is a user together with its resolved relations.
type Details struct {
	User
	Manager      *Summary       `json:"manager"`
	Department   *DepartmentRef `json:"department"`
	Subordinates []Summary      `json:"subordinates"`
}

type CreateParams struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Role         Role       `json:"role"`
	DepartmentID *uuid.UUID `json:"departmentId"`
	ManagerID    *uuid.UUID `json:"managerId"`
}

// UpdateParams is a partial update: nil fields are left untouched and the
// optional references tell "not provided" apart from "clear".
type UpdateParams struct {
	Name         *string                   `json:"name"`
	Email        *string                   `json:"email"`
	Role         *Role                     `json:"role"`
	DepartmentID types.Optional[uuid.UUID] `json:"departmentId"`
	ManagerID    types.Optional[uuid.UUID] `json:"managerId"`
}

// UpdateInput is what the update chain validates.
type UpdateInput struct {
	ID     uuid.UUID
	Params UpdateParams
}

// Apply returns u with the provided fields of p applied.
func (p UpdateParams) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.DepartmentID = p.DepartmentID.Apply(u.DepartmentID)
	u.ManagerID = p.ManagerID.Apply(u.ManagerID)
	return u
}

type BanParams struct {
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// SameState reports whether u and o hold the same values, ignoring UpdatedAt.
func (u User) SameState(o User) bool {
	return u.ID == o.ID &&
		u.Name == o.Name &&
		u.Email == o.Email &&
		u.Role == o.Role &&
		u.Status == o.Status &&
		equalPtr(u.DepartmentID, o.DepartmentID) &&
		equalPtr(u.ManagerID, o.ManagerID) &&
		u.Banned == o.Banned &&
		u.BanReason == o.BanReason &&
		equalTime(u.BanExpires, o.BanExpires) &&
		u.CreatedAt.Equal(o.CreatedAt)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
