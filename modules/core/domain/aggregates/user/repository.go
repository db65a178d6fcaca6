package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/repo"
)

var ErrNotFound = errors.New("user not found")

type Field string

const (
	NameField      Field = "name"
	EmailField     Field = "email"
	RoleField      Field = "role"
	StatusField    Field = "status"
	CreatedAtField Field = "created_at"
)

var SortFields = []string{string(NameField), string(EmailField), string(RoleField), string(StatusField), string(CreatedAtField)}

type FindParams struct {
	Search       string
	Role         *Role
	Status       *Status
	DepartmentID *uuid.UUID
	ManagerID    *uuid.UUID
	Pagination   repo.Pagination
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// ManagerOf returns the manager reference of id. found is false when
	// the user does not exist.
	ManagerOf(ctx context.Context, id uuid.UUID) (manager *uuid.UUID, found bool, err error)
	// LockHierarchy serializes manager reassignments until the surrounding
	// transaction ends.
	LockHierarchy(ctx context.Context) error
	List(ctx context.Context, params *FindParams) ([]User, int, error)
	All(ctx context.Context) ([]User, error)
	Subordinates(ctx context.Context, managerID uuid.UUID) ([]User, error)
	CountSubordinates(ctx context.Context, managerID uuid.UUID) (int, error)
	CountInDepartment(ctx context.Context, departmentID uuid.UUID) (int, error)
	CountByDepartment(ctx context.Context) (map[uuid.UUID]int, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Organizations reports the organizations a user owns. A user who owns one
// cannot be deleted: the membership would cascade away with the user.
type Organizations interface {
	Owned(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Departments is the read access users need into the department store.
type Departments interface {
	Lookup(ctx context.Context, id uuid.UUID) (DepartmentRef, bool, error)
}
