package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/repo"
)

var (
	ErrNotFound           = errors.New("organization not found")
	ErrMemberNotFound     = errors.New("organization member not found")
	ErrInvitationNotFound = errors.New("organization invitation not found")
)

type Field string

const (
	NameField      Field = "name"
	SlugField      Field = "slug"
	CreatedAtField Field = "created_at"
)

var SortFields = []string{string(NameField), string(SlugField), string(CreatedAtField)}

type FindParams struct {
	Search string
	// MemberID limits the result to organizations the user belongs to.
	MemberID   *uuid.UUID
	Pagination repo.Pagination
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	GetBySlug(ctx context.Context, slug string) (Organization, error)
	List(ctx context.Context, params *FindParams) ([]Organization, int, error)
	Create(ctx context.Context, o Organization) (Organization, error)
	Update(ctx context.Context, o Organization) (Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemberRepository interface {
	Get(ctx context.Context, organizationID, userID uuid.UUID) (Member, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]Member, error)
	// ListByUser returns every membership the user holds.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Member, error)
	Add(ctx context.Context, m Member) (Member, error)
	UpdateRole(ctx context.Context, organizationID, userID uuid.UUID, role Role) (Member, error)
	Remove(ctx context.Context, organizationID, userID uuid.UUID) error
}

type InvitationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Invitation, error)
	// GetByEmail returns the invitation row for the pair whatever its status.
	GetByEmail(ctx context.Context, organizationID uuid.UUID, email string) (Invitation, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]Invitation, error)
	Create(ctx context.Context, i Invitation) (Invitation, error)
	Update(ctx context.Context, i Invitation) (Invitation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
