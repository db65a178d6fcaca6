package persistence

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

type MemoryOrganizationRepository struct {
	organizations *memstore.Table[uuid.UUID, organization.Organization]
	members       *memstore.Table[uuid.UUID, organization.Member]
}

func NewMemoryOrganizationRepository(db *memstore.DB) organization.Repository {
	organizations := memoryOrganizations(db)
	members := memoryMembers(db)
	invitations := memoryInvitations(db)
	// members and invitations reference organizations ON DELETE CASCADE
	organizations.OnDelete(func(ctx context.Context, id uuid.UUID) {
		members.DeleteWhere(ctx, func(m organization.Member) bool { return m.OrganizationID == id })
		invitations.DeleteWhere(ctx, func(i organization.Invitation) bool { return i.OrganizationID == id })
	})
	return &MemoryOrganizationRepository{organizations: organizations, members: members}
}

func (m *MemoryOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	o, ok := m.organizations.Get(ctx, id)
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}
	return o, nil
}

func (m *MemoryOrganizationRepository) GetBySlug(ctx context.Context, slug string) (organization.Organization, error) {
	found := m.organizations.Filter(ctx, func(o organization.Organization) bool { return o.Slug == slug })
	if len(found) == 0 {
		return organization.Organization{}, organization.ErrNotFound
	}
	return found[0], nil
}

func (m *MemoryOrganizationRepository) List(ctx context.Context, params *organization.FindParams) ([]organization.Organization, int, error) {
	var memberOf map[uuid.UUID]bool
	if params.MemberID != nil {
		memberOf = map[uuid.UUID]bool{}
		for _, member := range m.members.Filter(ctx, func(x organization.Member) bool { return x.UserID == *params.MemberID }) {
			memberOf[member.OrganizationID] = true
		}
	}
	search := strings.ToLower(params.Search)
	all := m.organizations.Filter(ctx, func(o organization.Organization) bool {
		if search != "" && !strings.Contains(strings.ToLower(o.Name), search) && !strings.Contains(o.Slug, search) {
			return false
		}
		return memberOf == nil || memberOf[o.ID]
	})

	compare := func(a, b organization.Organization) int {
		switch organization.Field(params.Pagination.SortBy) {
		case organization.NameField:
			if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c
			}
		case organization.SlugField:
			if c := strings.Compare(a.Slug, b.Slug); c != 0 {
				return c
			}
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if params.Pagination.SortOrder == repo.SortDesc {
			return compare(all[i], all[j]) > 0
		}
		return compare(all[i], all[j]) < 0
	})
	return repo.Slice(all, params.Pagination), len(all), nil
}

func (m *MemoryOrganizationRepository) Create(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	if err := m.organizations.Insert(ctx, o.ID, o); err != nil {
		return organization.Organization{}, err
	}
	return o, nil
}

func (m *MemoryOrganizationRepository) Update(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	existed, err := m.organizations.Update(ctx, o.ID, o)
	if err != nil {
		return organization.Organization{}, err
	}
	if !existed {
		return organization.Organization{}, organization.ErrNotFound
	}
	return o, nil
}

func (m *MemoryOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if !m.organizations.Delete(ctx, id) {
		return organization.ErrNotFound
	}
	return nil
}
