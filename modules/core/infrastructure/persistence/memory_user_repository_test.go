package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	"github.com/iota-uz/iota-admin/modules/core/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

type fixture struct {
	db       *memstore.DB
	users    user.Repository
	accounts identity.Provider
}

func setup() fixture {
	db := memstore.New()
	return fixture{
		db:       db,
		users:    persistence.NewMemoryUserRepository(db),
		accounts: persistence.NewMemoryIdentityProvider(db),
	}
}

func (f fixture) create(t *testing.T, email string, manager *uuid.UUID) user.User {
	t.Helper()
	ctx := context.Background()
	account, err := f.accounts.CreateAccount(ctx, email, "Passw0rdX")
	require.NoError(t, err)
	now := time.Now().UTC()
	u, err := f.users.Create(ctx, user.User{
		ID:        account.ID,
		Name:      email,
		Email:     email,
		Role:      user.RoleUser,
		Status:    user.StatusActive,
		ManagerID: manager,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return u
}

func TestMemoryUserRepository_Constraints(t *testing.T) {
	t.Parallel()
	f := setup()
	ctx := context.Background()
	ada := f.create(t, "ada@example.com", nil)

	_, err := f.accounts.CreateAccount(ctx, "ADA@example.com", "Passw0rdX")
	v, ok := repo.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, "accounts_email_key", v.Constraint)

	missing := uuid.New()
	orphan := ada
	orphan.ManagerID = &missing
	_, err = f.users.Update(ctx, orphan)
	v, ok = repo.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, "users_manager_id_fkey", v.Constraint)

	_, err = f.users.Create(ctx, user.User{ID: uuid.New(), Email: "ghost@example.com"})
	v, ok = repo.AsConstraint(err)
	require.True(t, ok)
	assert.Equal(t, "users_id_fkey", v.Constraint)
}

func TestMemoryUserRepository_DeleteClearsManager(t *testing.T) {
	t.Parallel()
	f := setup()
	ctx := context.Background()

	boss := f.create(t, "boss@example.com", nil)
	report := f.create(t, "report@example.com", &boss.ID)

	manager, found, err := f.users.ManagerOf(ctx, report.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, boss.ID, *manager)

	require.NoError(t, f.accounts.DeleteAccount(ctx, boss.ID))
	_, err = f.users.GetByID(ctx, boss.ID)
	require.ErrorIs(t, err, user.ErrNotFound)

	manager, found, err = f.users.ManagerOf(ctx, report.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Nil(t, manager)

	_, found, err = f.users.ManagerOf(ctx, boss.ID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryUserRepository_ListSortsAndPages(t *testing.T) {
	t.Parallel()
	f := setup()
	ctx := context.Background()
	for _, email := range []string{"carol@example.com", "alice@example.com", "bob@example.com"} {
		f.create(t, email, nil)
	}

	params := &user.FindParams{Pagination: repo.Pagination{Page: 1, PageSize: 2, SortBy: string(user.EmailField), SortOrder: repo.SortAsc}}
	users, total, err := f.users.List(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, []string{"alice@example.com", "bob@example.com"}, []string{users[0].Email, users[1].Email})

	params.Pagination.Page = 2
	users, _, err = f.users.List(ctx, params)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "carol@example.com", users[0].Email)

	users, total, err = f.users.List(ctx, &user.FindParams{Search: "BO", Pagination: repo.Pagination{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "bob@example.com", users[0].Email)
}
