package department

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/repo"
)

var ErrNotFound = errors.New("department not found")

type Field string

const (
	NameField      Field = "name"
	CreatedAtField Field = "created_at"
)

var SortFields = []string{string(NameField), string(CreatedAtField)}

type FindParams struct {
	Search     string
	ParentID   *uuid.UUID
	RootsOnly  bool
	Pagination repo.Pagination
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Department, error)
	// ParentOf returns the parent reference of id. found is false when the
	// department does not exist.
	ParentOf(ctx context.Context, id uuid.UUID) (parent *uuid.UUID, found bool, err error)
	// LockHierarchy serializes parent reassignments until the surrounding
	// transaction ends, so concurrent moves cannot each miss the other's cycle.
	LockHierarchy(ctx context.Context) error
	List(ctx context.Context, params *FindParams) ([]Department, int, error)
	All(ctx context.Context) ([]Department, error)
	Children(ctx context.Context, id uuid.UUID) ([]Department, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	Create(ctx context.Context, d Department) (Department, error)
	Update(ctx context.Context, d Department) (Department, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
