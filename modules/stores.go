package modules

import (
	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	corepersistence "github.com/iota-uz/iota-admin/modules/core/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	hrmpersistence "github.com/iota-uz/iota-admin/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	orgpersistence "github.com/iota-uz/iota-admin/modules/org/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/pkg/memstore"
)

// Stores holds one repository per aggregate for the selected storage backend.
type Stores struct {
	Users         user.Repository
	Identity      identity.Provider
	Departments   department.Repository
	Organizations organization.Repository
	Members       organization.MemberRepository
	Invitations   organization.InvitationRepository
}

// NewPgStores returns repositories that run their queries on the pool or
// transaction found in the request context.
func NewPgStores() Stores {
	return Stores{
		Users:         corepersistence.NewUserRepository(),
		Identity:      corepersistence.NewIdentityProvider(),
		Departments:   hrmpersistence.NewDepartmentRepository(),
		Organizations: orgpersistence.NewOrganizationRepository(),
		Members:       orgpersistence.NewMemberRepository(),
		Invitations:   orgpersistence.NewInvitationRepository(),
	}
}

// NewMemoryStores builds the in-memory repositories over db. Call it once per
// db: every repository registers its delete cascades on construction.
func NewMemoryStores(db *memstore.DB) Stores {
	return Stores{
		Users:         corepersistence.NewMemoryUserRepository(db),
		Identity:      corepersistence.NewMemoryIdentityProvider(db),
		Departments:   hrmpersistence.NewMemoryDepartmentRepository(db),
		Organizations: orgpersistence.NewMemoryOrganizationRepository(db),
		Members:       orgpersistence.NewMemoryMemberRepository(db),
		Invitations:   orgpersistence.NewMemoryInvitationRepository(db),
	}
}
