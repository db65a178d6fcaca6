package persistence

import (
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/memstore"
)

const (
	OrganizationsTable = "organizations"
	MembersTable       = "organization_members"
	InvitationsTable   = "organization_invitations"
)

func memoryOrganizations(db *memstore.DB) *memstore.Table[uuid.UUID, organization.Organization] {
	return memstore.Use[uuid.UUID, organization.Organization](db, OrganizationsTable).
		Unique("organizations_slug_key", func(o organization.Organization) (string, bool) {
			return o.Slug, true
		})
}

func memoryMembers(db *memstore.DB) *memstore.Table[uuid.UUID, organization.Member] {
	return memstore.Use[uuid.UUID, organization.Member](db, MembersTable).
		Unique("organization_members_organization_id_user_id_key", func(m organization.Member) (string, bool) {
			return m.OrganizationID.String() + "/" + m.UserID.String(), true
		})
}

func memoryInvitations(db *memstore.DB) *memstore.Table[uuid.UUID, organization.Invitation] {
	return memstore.Use[uuid.UUID, organization.Invitation](db, InvitationsTable).
		Unique("organization_invitations_organization_id_email_key", func(i organization.Invitation) (string, bool) {
			return i.OrganizationID.String() + "/" + strings.ToLower(i.Email), true
		})
}
