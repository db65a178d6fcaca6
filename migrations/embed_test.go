package migrations_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/migrations"
)

func TestBaselineDeclaresConstraintNames(t *testing.T) {
	t.Parallel()

	raw, err := fs.ReadFile(migrations.FS, "00001_admin_baseline.sql")
	require.NoError(t, err)
	sql := string(raw)

	require.True(t, strings.HasPrefix(sql, "-- +goose Up"))
	require.Contains(t, sql, "-- +goose Down")
	for _, name := range []string{
		"accounts_email_key",
		"users_email_key",
		"users_id_fkey",
		"users_manager_id_fkey",
		"users_department_id_fkey",
		"departments_parent_id_fkey",
		"organizations_slug_key",
		"organization_members_organization_id_user_id_key",
		"organization_members_organization_id_fkey",
		"organization_members_user_id_fkey",
		"organization_invitations_organization_id_email_key",
		"organization_invitations_organization_id_fkey",
	} {
		require.Contains(t, sql, "CONSTRAINT "+name, name)
	}
}
