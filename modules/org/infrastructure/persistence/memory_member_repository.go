package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	corepersistence "github.com/iota-uz/iota-admin/modules/core/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/memstore"
)

type MemoryMemberRepository struct {
	db      *memstore.DB
	members *memstore.Table[uuid.UUID, organization.Member]
	users   *memstore.Table[uuid.UUID, user.User]
}

func NewMemoryMemberRepository(db *memstore.DB) organization.MemberRepository {
	members := memoryMembers(db)
	users := corepersistence.MemoryUsers(db)
	// organization_members.user_id ON DELETE CASCADE
	users.OnDelete(func(ctx context.Context, id uuid.UUID) {
		members.DeleteWhere(ctx, func(m organization.Member) bool { return m.UserID == id })
	})
	return &MemoryMemberRepository{db: db, members: members, users: users}
}

func pair(organizationID, userID uuid.UUID) func(organization.Member) bool {
	return func(m organization.Member) bool {
		return m.OrganizationID == organizationID && m.UserID == userID
	}
}

// withUser fills the columns the Postgres repository joins from users.
func (r *MemoryMemberRepository) withUser(ctx context.Context, m organization.Member) organization.Member {
	if u, ok := r.users.Get(ctx, m.UserID); ok {
		m.Name = u.Name
		m.Email = u.Email
	}
	return m
}

func (r *MemoryMemberRepository) Get(ctx context.Context, organizationID, userID uuid.UUID) (organization.Member, error) {
	found := r.members.Filter(ctx, pair(organizationID, userID))
	if len(found) == 0 {
		return organization.Member{}, organization.ErrMemberNotFound
	}
	return r.withUser(ctx, found[0]), nil
}

func (r *MemoryMemberRepository) List(ctx context.Context, organizationID uuid.UUID) ([]organization.Member, error) {
	members := r.members.Filter(ctx, func(m organization.Member) bool { return m.OrganizationID == organizationID })
	for i := range members {
		members[i] = r.withUser(ctx, members[i])
	}
	return members, nil
}

func (r *MemoryMemberRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]organization.Member, error) {
	members := r.members.Filter(ctx, func(m organization.Member) bool { return m.UserID == userID })
	for i := range members {
		members[i] = r.withUser(ctx, members[i])
	}
	return members, nil
}

func (r *MemoryMemberRepository) Add(ctx context.Context, m organization.Member) (organization.Member, error) {
	if !r.db.Exists(ctx, OrganizationsTable, m.OrganizationID) {
		return organization.Member{}, memstore.ForeignKey(MembersTable, "organization_members_organization_id_fkey")
	}
	if !r.users.Has(ctx, m.UserID) {
		return organization.Member{}, memstore.ForeignKey(MembersTable, "organization_members_user_id_fkey")
	}
	m.Name, m.Email = "", ""
	if err := r.members.Insert(ctx, m.ID, m); err != nil {
		return organization.Member{}, err
	}
	return r.withUser(ctx, m), nil
}

func (r *MemoryMemberRepository) UpdateRole(ctx context.Context, organizationID, userID uuid.UUID, role organization.Role) (organization.Member, error) {
	n := r.members.UpdateWhere(ctx, pair(organizationID, userID), func(m organization.Member) organization.Member {
		m.Role = role
		return m
	})
	if n == 0 {
		return organization.Member{}, organization.ErrMemberNotFound
	}
	return r.Get(ctx, organizationID, userID)
}

func (r *MemoryMemberRepository) Remove(ctx context.Context, organizationID, userID uuid.UUID) error {
	if r.members.DeleteWhere(ctx, pair(organizationID, userID)) == 0 {
		return organization.ErrMemberNotFound
	}
	return nil
}
