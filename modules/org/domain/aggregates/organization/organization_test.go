package organization_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/types"
)

func TestNewRole(t *testing.T) {
	t.Parallel()

	r, err := organization.NewRole("organization:admin")
	require.NoError(t, err)
	require.Equal(t, organization.RoleAdmin, r)

	_, err = organization.NewRole("user:ADMIN")
	require.Equal(t, serrors.InvalidRole, serrors.CodeOf(err))

	_, err = organization.NewAssignableRole("OWNER")
	require.Equal(t, serrors.InvalidRole, serrors.CodeOf(err))

	require.Equal(t, "organization:MEMBER", organization.RoleMember.Ref().String())
}

func TestInvitation_EffectiveStatus(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pending := organization.Invitation{Status: organization.InvitationPending, ExpiresAt: now.Add(time.Second)}
	require.Equal(t, organization.InvitationPending, pending.EffectiveStatus(now))
	require.Equal(t, organization.InvitationExpired, pending.EffectiveStatus(now.Add(time.Second)))

	accepted := organization.Invitation{Status: organization.InvitationAccepted, ExpiresAt: now.Add(-time.Hour)}
	require.Equal(t, organization.InvitationAccepted, accepted.EffectiveStatus(now))
}

func TestUpdateParams_Apply(t *testing.T) {
	t.Parallel()
	logo := "https://cdn.example.com/acme.png"
	o := organization.Organization{Name: "Acme", Slug: "acme", Logo: &logo}

	name := "Acme Corp"
	next := organization.UpdateParams{Name: &name}.Apply(o)
	require.Equal(t, "Acme Corp", next.Name)
	require.Equal(t, &logo, next.Logo)
	require.False(t, next.SameState(o))

	cleared := organization.UpdateParams{Logo: types.Null[string]()}.Apply(o)
	require.Nil(t, cleared.Logo)
	require.True(t, organization.UpdateParams{}.Apply(o).SameState(o))
}
