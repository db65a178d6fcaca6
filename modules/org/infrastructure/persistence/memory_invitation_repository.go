package persistence

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/memstore"
)

type MemoryInvitationRepository struct {
	db          *memstore.DB
	invitations *memstore.Table[uuid.UUID, organization.Invitation]
}

func NewMemoryInvitationRepository(db *memstore.DB) organization.InvitationRepository {
	return &MemoryInvitationRepository{db: db, invitations: memoryInvitations(db)}
}

func (r *MemoryInvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Invitation, error) {
	i, ok := r.invitations.Get(ctx, id)
	if !ok {
		return organization.Invitation{}, organization.ErrInvitationNotFound
	}
	return i, nil
}

func (r *MemoryInvitationRepository) GetByEmail(ctx context.Context, organizationID uuid.UUID, email string) (organization.Invitation, error) {
	found := r.invitations.Filter(ctx, func(i organization.Invitation) bool {
		return i.OrganizationID == organizationID && i.Email == email
	})
	if len(found) == 0 {
		return organization.Invitation{}, organization.ErrInvitationNotFound
	}
	return found[0], nil
}

func (r *MemoryInvitationRepository) List(ctx context.Context, organizationID uuid.UUID) ([]organization.Invitation, error) {
	invitations := r.invitations.Filter(ctx, func(i organization.Invitation) bool { return i.OrganizationID == organizationID })
	sort.SliceStable(invitations, func(a, b int) bool {
		return invitations[a].CreatedAt.After(invitations[b].CreatedAt)
	})
	return invitations, nil
}

func (r *MemoryInvitationRepository) Create(ctx context.Context, i organization.Invitation) (organization.Invitation, error) {
	if !r.db.Exists(ctx, OrganizationsTable, i.OrganizationID) {
		return organization.Invitation{}, memstore.ForeignKey(InvitationsTable, "organization_invitations_organization_id_fkey")
	}
	if err := r.invitations.Insert(ctx, i.ID, i); err != nil {
		return organization.Invitation{}, err
	}
	return i, nil
}

func (r *MemoryInvitationRepository) Update(ctx context.Context, i organization.Invitation) (organization.Invitation, error) {
	existed, err := r.invitations.Update(ctx, i.ID, i)
	if err != nil {
		return organization.Invitation{}, err
	}
	if !existed {
		return organization.Invitation{}, organization.ErrInvitationNotFound
	}
	return i, nil
}

func (r *MemoryInvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if !r.invitations.Delete(ctx, id) {
		return organization.ErrInvitationNotFound
	}
	return nil
}
