package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	corepersistence "github.com/iota-uz/iota-admin/modules/core/infrastructure/persistence"
	coreservices "github.com/iota-uz/iota-admin/modules/core/services"
	hrmpersistence "github.com/iota-uz/iota-admin/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/modules/org/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/modules/org/services"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

type fixture struct {
	orgs  *services.OrganizationService
	users *coreservices.UserService
	clock *time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := memstore.New()
	bus := eventbus.NewEventPublisher(logrus.New())
	userRepo := corepersistence.NewMemoryUserRepository(db)
	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	f := &fixture{clock: &clock}
	now := func() time.Time { return *f.clock }
	members := persistence.NewMemoryMemberRepository(db)

	f.users = coreservices.NewUserService(
		userRepo,
		corepersistence.NewMemoryIdentityProvider(db),
		hrmpersistence.NewUserDepartments(hrmpersistence.NewMemoryDepartmentRepository(db)),
		persistence.NewUserOrganizations(members),
		db,
		bus,
		coreservices.Options{PageSize: 25, MaxPageSize: 100, Now: now},
	)
	f.orgs = services.NewOrganizationService(
		persistence.NewMemoryOrganizationRepository(db),
		members,
		persistence.NewMemoryInvitationRepository(db),
		userRepo,
		db,
		bus,
		services.Options{PageSize: 25, MaxPageSize: 100, Now: now},
	)
	return f
}

func (f *fixture) user(t *testing.T, name, email string) uuid.UUID {
	t.Helper()
	u, err := f.users.Create(context.Background(), user.CreateParams{Name: name, Email: email, Password: "Str0ngPass"})
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) org(t *testing.T, owner uuid.UUID, slug string) organization.Organization {
	t.Helper()
	o, err := f.orgs.Create(context.Background(), owner, organization.CreateParams{Name: "Acme", Slug: slug})
	require.NoError(t, err)
	return o
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, serrors.CodeOf(err))
}

func TestOrganizationService_Create(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "Olga", "olga@example.com")

	acme := f.org(t, owner, "acme")
	members, err := f.orgs.ListMembers(ctx, owner, acme.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner, members[0].UserID)
	assert.Equal(t, organization.RoleOwner, members[0].Role)
	assert.Equal(t, "olga@example.com", members[0].Email)

	cases := []struct {
		name   string
		params organization.CreateParams
		code   string
	}{
		{"missing name", organization.CreateParams{Slug: "x"}, serrors.RequiredName},
		{"missing slug", organization.CreateParams{Name: "X"}, serrors.RequiredSlug},
		{"bad slug", organization.CreateParams{Name: "X", Slug: "Not A Slug"}, serrors.InvalidSlug},
		{"taken slug", organization.CreateParams{Name: "X", Slug: "acme"}, serrors.SlugExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orgs.Create(ctx, owner, tc.params)
			requireCode(t, err, tc.code)
		})
	}

	page, err := f.orgs.List(ctx, organization.FindParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestOrganizationService_Update_Gated(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "Olga", "olga@example.com")
	member := f.user(t, "Mia", "mia@example.com")
	outsider := f.user(t, "Otto", "otto@example.com")
	acme := f.org(t, owner, "acme")
	f.org(t, owner, "globex")

	_, err := f.orgs.AddMember(ctx, owner, acme.ID, organization.AddMemberParams{UserID: member})
	require.NoError(t, err)

	name := "Acme Corp"
	_, err = f.orgs.Update(ctx, outsider, acme.ID, organization.UpdateParams{Name: &name})
	requireCode(t, err, serrors.InsufficientPermissions)
	_, err = f.orgs.Update(ctx, member, acme.ID, organization.UpdateParams{Name: &name})
	requireCode(t, err, serrors.InsufficientPermissions)

	slug := "globex"
	_, err = f.orgs.Update(ctx, owner, acme.ID, organization.UpdateParams{Slug: &slug})
	requireCode(t, err, serrors.SlugExists)

	updated, err := f.orgs.Update(ctx, owner, acme.ID, organization.UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "acme", updated.Slug)

	_, err = f.orgs.Update(ctx, owner, uuid.New(), organization.UpdateParams{Name: &name})
	requireCode(t, err, serrors.NotFound)
}

func TestOrganizationService_Delete_OwnerOnly(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "Olga", "olga@example.com")
	admin := f.user(t, "Adam", "adam@example.com")
	acme := f.org(t, owner, "acme")

	_, err := f.orgs.AddMember(ctx, owner, acme.ID, organization.AddMemberParams{UserID: admin, Role: organization.RoleAdmin})
	require.NoError(t, err)

	requireCode(t, f.orgs.Delete(ctx, admin, acme.ID), serrors.InsufficientPermissions)
	require.NoError(t, f.orgs.Delete(ctx, owner, acme.ID))

	_, err = f.orgs.GetByID(ctx, acme.ID)
	requireCode(t, err, serrors.NotFound)

	page, err := f.orgs.List(ctx, organization.FindParams{MemberID: &admin})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestUserDelete_KeepsOrganizationOwner(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "Olga", "olga@example.com")
	admin := f.user(t, "Adam", "adam@example.com")
	acme := f.org(t, owner, "acme")

	_, err := f.orgs.AddMember(ctx, owner, acme.ID, organization.AddMemberParams{UserID: admin, Role: organization.RoleAdmin})
	require.NoError(t, err)

	requireCode(t, f.users.Delete(ctx, owner), serrors.CannotRemoveOwner)

	members, err := f.orgs.ListMembers(ctx, admin, acme.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, organization.RoleOwner, members[0].Role)
	assert.Equal(t, owner, members[0].UserID)

	// Non-owner memberships still cascade with the user.
	require.NoError(t, f.users.Delete(ctx, admin))
	members, err = f.orgs.ListMembers(ctx, owner, acme.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)

	require.NoError(t, f.orgs.Delete(ctx, owner, acme.ID))
	require.NoError(t, f.users.Delete(ctx, owner))
}

func TestOrganizationService_Members(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "Olga", "olga@example.com")
	admin := f.user(t, "Adam", "adam@example.com")
	member := f.user(t, "Mia", "mia@example.com")
	acme := f.org(t, owner, "acme")

	_, err := f.orgs.AddMember(ctx, owner, acme.ID, organization.AddMemberParams{UserID: admin, Role: "admin"})
	require.NoError(t, err)

	_, err = f.orgs.AddMember(ctx, member, acme.ID, organization.AddMemberParams{UserID: member})
	requireCode(t, err, serrors.InsufficientPermissions)

	_, err = f.orgs.AddMember(ctx, admin, acme.ID, organization.AddMemberParams{UserID: member, Role: organization.RoleOwner})
	requireCode(t, err, serrors.InvalidRole)

	_, err = f.orgs.AddMember(ctx, admin, acme.ID, organization.AddMemberParams{UserID: member, Role: "user:ADMIN"})
	requireCode(t, err, serrors.InvalidRole)

	_, err = f.orgs.AddMember(ctx, admin, acme.ID, organization.AddMemberParams{UserID: uuid.New()})
	requireCode(t, err, serrors.UserNotFound)

	added, err := f.orgs.AddMember(ctx, admin, acme.ID, organization.AddMemberParams{UserID: member})
	require.NoError(t, err)
	assert.Equal(t, organization.RoleMember, added.Role)
	assert.Equal(t, "Mia", added.Name)

	_, err = f.orgs.AddMember(ctx, admin, acme.ID, organization.AddMemberParams{UserID: member})
	requireCode(t, err, serrors.AlreadyMember)

	t.Run("role changes never touch the owner", func(t *testing.T) {
		_, err := f.orgs.UpdateMemberRole(ctx, admin, acme.ID, owner, organization.RoleMember)
		requireCode(t, err, serrors.CannotChangeOwnerRole)

		_, err = f.orgs.UpdateMemberRole(ctx, owner, acme.ID, member, organization.RoleOwner)
		requireCode(t, err, serrors.InvalidRole)

		_, err = f.orgs.UpdateMemberRole(ctx, member, acme.ID, admin, organization.RoleMember)
		requireCode(t, err, serrors.InsufficientPermissions)

		_, err = f.orgs.UpdateMemberRole(ctx, owner, acme.ID, uuid.New(), organization.RoleAdmin)
		requireCode(t, err, serrors.MemberNotFound)

		promoted, err := f.orgs.UpdateMemberRole(ctx, owner, acme.ID, member, organization.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, organization.RoleAdmin, promoted.Role)

		demoted, err := f.orgs.UpdateMemberRole(ctx, owner, acme.ID, member, organization.RoleMember)
		require.NoError(t, err)
		assert.Equal(t, organization.RoleMember, demoted.Role)
	})

	t.Run("owner is never removed", func(t *testing.T) {
		requireCode(t, f.orgs.RemoveMember(ctx, admin, acme.ID, owner), serrors.CannotRemoveOwner)
		requireCode(t, f.orgs.RemoveMember(ctx, owner, acme.ID, owner), serrors.CannotRemoveOwner)
		requireCode(t, f.orgs.RemoveMember(ctx, member, acme.ID, admin), serrors.InsufficientPermissions)
	})

	t.Run("members may leave", func(t *testing.T) {
		require.NoError(t, f.orgs.RemoveMember(ctx, member, acme.ID, member))
		requireCode(t, f.orgs.RemoveMember(ctx, admin, acme.ID, member), serrors.MemberNotFound)

		members, err := f.orgs.ListMembers(ctx, owner, acme.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		owners := 0
		for _, m := range members {
			if m.Role == organization.RoleOwner {
				owners++
			}
		}
		assert.Equal(t, 1, owners)
	})

	_, err = f.orgs.ListMembers(ctx, member, acme.ID)
	requireCode(t, err, serrors.InsufficientPermissions)
}

func TestOrganizationService_Invite(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "Olga", "olga@example.com")
	admin := f.user(t, "Adam", "adam@example.com")
	acme := f.org(t, owner, "acme")
	_, err := f.orgs.AddMember(ctx, owner, acme.ID, organization.AddMemberParams{UserID: admin, Role: organization.RoleAdmin})
	require.NoError(t, err)

	invitation, err := f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "  New.Hire@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "new.hire@example.com", invitation.Email)
	assert.Equal(t, organization.RoleMember, invitation.Role)
	assert.Equal(t, organization.InvitationPending, invitation.Status)
	assert.Equal(t, f.clock.Add(7*24*time.Hour), invitation.ExpiresAt)

	_, err = f.orgs.Invite(ctx, admin, acme.ID, organization.InviteParams{Email: "new.hire@example.com"})
	requireCode(t, err, serrors.InvitationExists)

	_, err = f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "adam@example.com"})
	requireCode(t, err, serrors.AlreadyMember)

	_, err = f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "not-an-email"})
	requireCode(t, err, serrors.InvalidEmail)

	_, err = f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "x@example.com", Role: organization.RoleOwner})
	requireCode(t, err, serrors.InvalidRole)

	outsider := f.user(t, "Otto", "otto@example.com")
	_, err = f.orgs.Invite(ctx, outsider, acme.ID, organization.InviteParams{Email: "x@example.com"})
	requireCode(t, err, serrors.InsufficientPermissions)

	t.Run("expired invitations are reissued in place", func(t *testing.T) {
		*f.clock = f.clock.Add(8 * 24 * time.Hour)

		listed, err := f.orgs.ListInvitations(ctx, owner, acme.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, organization.InvitationExpired, listed[0].Status)

		again, err := f.orgs.Invite(ctx, admin, acme.ID, organization.InviteParams{Email: "new.hire@example.com", Role: "ADMIN"})
		require.NoError(t, err)
		assert.Equal(t, invitation.ID, again.ID)
		assert.Equal(t, organization.InvitationPending, again.Status)
		assert.Equal(t, organization.RoleAdmin, again.Role)
		assert.Equal(t, admin, again.InvitedBy)
	})
}

func TestOrganizationService_AnswerInvitation(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	owner := f.user(t, "Olga", "olga@example.com")
	acme := f.org(t, owner, "acme")
	hire := f.user(t, "Hana", "hana@example.com")
	other := f.user(t, "Otto", "otto@example.com")

	invitation, err := f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "hana@example.com", Role: organization.RoleAdmin})
	require.NoError(t, err)

	_, err = f.orgs.AcceptInvitation(ctx, other, invitation.ID)
	requireCode(t, err, serrors.InsufficientPermissions)

	member, err := f.orgs.AcceptInvitation(ctx, hire, invitation.ID)
	require.NoError(t, err)
	assert.Equal(t, organization.RoleAdmin, member.Role)
	assert.Equal(t, acme.ID, member.OrganizationID)

	_, err = f.orgs.AcceptInvitation(ctx, hire, invitation.ID)
	requireCode(t, err, serrors.InvitationNotPending)

	_, err = f.orgs.AcceptInvitation(ctx, hire, uuid.New())
	requireCode(t, err, serrors.InvitationNotFound)

	page, err := f.orgs.List(ctx, organization.FindParams{MemberID: &hire})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, acme.ID, page.Items[0].ID)

	t.Run("reject", func(t *testing.T) {
		inv, err := f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "otto@example.com"})
		require.NoError(t, err)
		rejected, err := f.orgs.RejectInvitation(ctx, other, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, organization.InvitationRejected, rejected.Status)
		requireCode(t, f.orgs.CancelInvitation(ctx, owner, inv.ID), serrors.InvitationNotPending)
	})

	t.Run("expired", func(t *testing.T) {
		f.user(t, "Eve", "eve@example.com")
		inv, err := f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "eve@example.com"})
		require.NoError(t, err)
		*f.clock = f.clock.Add(7 * 24 * time.Hour)
		eve, err := f.users.List(ctx, user.FindParams{Search: "eve@"})
		require.NoError(t, err)
		require.Len(t, eve.Items, 1)
		_, err = f.orgs.AcceptInvitation(ctx, eve.Items[0].ID, inv.ID)
		requireCode(t, err, serrors.InvitationExpired)
	})

	t.Run("cancel", func(t *testing.T) {
		inv, err := f.orgs.Invite(ctx, owner, acme.ID, organization.InviteParams{Email: "later@example.com"})
		require.NoError(t, err)
		requireCode(t, f.orgs.CancelInvitation(ctx, other, inv.ID), serrors.InsufficientPermissions)
		require.NoError(t, f.orgs.CancelInvitation(ctx, hire, inv.ID))
		requireCode(t, f.orgs.CancelInvitation(ctx, owner, inv.ID), serrors.InvitationNotFound)
	})
}
