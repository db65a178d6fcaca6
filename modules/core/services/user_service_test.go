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
	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	"github.com/iota-uz/iota-admin/modules/core/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/modules/core/services"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	hrmpersistence "github.com/iota-uz/iota-admin/modules/hrm/infrastructure/persistence"
	orgpersistence "github.com/iota-uz/iota-admin/modules/org/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/types"
)

type fixture struct {
	users    *services.UserService
	identity identity.Provider
	bus      eventbus.EventBus
	sales    uuid.UUID
	clock    *time.Time
}

func setup(t *testing.T) fixture {
	t.Helper()
	return setupWith(t, func(r user.Repository) user.Repository { return r })
}

func setupWith(t *testing.T, wrap func(user.Repository) user.Repository) fixture {
	t.Helper()
	db := memstore.New()
	bus := eventbus.NewEventPublisher(logrus.New())
	provider := persistence.NewMemoryIdentityProvider(db)
	userRepo := wrap(persistence.NewMemoryUserRepository(db))
	departmentRepo := hrmpersistence.NewMemoryDepartmentRepository(db)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	sales, err := departmentRepo.Create(context.Background(), department.Department{
		ID:        uuid.New(),
		Name:      "Sales",
		CreatedAt: clock,
		UpdatedAt: clock,
	})
	require.NoError(t, err)

	f := fixture{identity: provider, bus: bus, sales: sales.ID, clock: &clock}
	f.users = services.NewUserService(
		userRepo,
		provider,
		hrmpersistence.NewUserDepartments(departmentRepo),
		orgpersistence.NewUserOrganizations(orgpersistence.NewMemoryMemberRepository(db)),
		db,
		bus,
		services.Options{PageSize: 2, MaxPageSize: 10, Now: func() time.Time { return *f.clock }},
	)
	return f
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, serrors.CodeOf(err))
}

func (f fixture) create(t *testing.T, name, email string, manager *uuid.UUID) user.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), user.CreateParams{
		Name:      name,
		Email:     email,
		Password:  "Passw0rdX",
		ManagerID: manager,
	})
	require.NoError(t, err)
	return u
}

func TestUserService_Create(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	var created []*user.CreatedEvent
	f.bus.Subscribe(func(e *user.CreatedEvent) { created = append(created, e) })

	u, err := f.users.Create(ctx, user.CreateParams{
		Name:         "  Ada Lovelace ",
		Email:        "ADA@Example.com",
		Password:     "Passw0rdX",
		DepartmentID: &f.sales,
	})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", u.Name)
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, user.RoleUser, u.Role)
	require.Equal(t, user.StatusActive, u.Status)
	require.Len(t, created, 1)
	require.Equal(t, u.ID, created[0].Result.ID)

	account, err := f.identity.Verify(ctx, "ada@example.com", "Passw0rdX")
	require.NoError(t, err)
	require.Equal(t, u.ID, account.ID)

	missing := uuid.New()
	cases := []struct {
		name   string
		params user.CreateParams
		code   string
	}{
		{"missing name", user.CreateParams{Email: "x@example.com", Password: "Passw0rdX"}, serrors.RequiredName},
		{"missing email", user.CreateParams{Name: "X", Password: "Passw0rdX"}, serrors.RequiredEmail},
		{"missing password", user.CreateParams{Name: "X", Email: "x@example.com"}, serrors.RequiredPassword},
		{"bad email", user.CreateParams{Name: "X", Email: "not-an-email", Password: "Passw0rdX"}, serrors.InvalidEmail},
		{"taken email", user.CreateParams{Name: "X", Email: "Ada@example.com", Password: "Passw0rdX"}, serrors.EmailExists},
		{"short password", user.CreateParams{Name: "X", Email: "x@example.com", Password: "Pw0"}, serrors.PasswordTooShort},
		{"weak password", user.CreateParams{Name: "X", Email: "x@example.com", Password: "alllowercase1"}, serrors.PasswordWeak},
		{"bad role", user.CreateParams{Name: "X", Email: "x@example.com", Password: "Passw0rdX", Role: "ROOT"}, serrors.InvalidRole},
		{"unknown manager", user.CreateParams{Name: "X", Email: "x@example.com", Password: "Passw0rdX", ManagerID: &missing}, serrors.ManagerNotFound},
		{"unknown department", user.CreateParams{Name: "X", Email: "x@example.com", Password: "Passw0rdX", DepartmentID: &missing}, serrors.DepartmentNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Create(ctx, tc.params)
			requireCode(t, err, tc.code)
		})
	}
	require.Len(t, created, 1)
}

func TestUserService_ManagerCycles(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	ceo := f.create(t, "CEO", "ceo@example.com", nil)
	vp := f.create(t, "VP", "vp@example.com", &ceo.ID)
	lead := f.create(t, "Lead", "lead@example.com", &vp.ID)

	for _, manager := range []uuid.UUID{ceo.ID, vp.ID, lead.ID} {
		_, err := f.users.Update(ctx, ceo.ID, user.UpdateParams{ManagerID: types.Some(manager)})
		requireCode(t, err, serrors.CircularReference)
	}

	moved, err := f.users.Update(ctx, lead.ID, user.UpdateParams{ManagerID: types.Some(ceo.ID)})
	require.NoError(t, err)
	require.Equal(t, ceo.ID, *moved.ManagerID)

	detached, err := f.users.Update(ctx, lead.ID, user.UpdateParams{ManagerID: types.Null[uuid.UUID]()})
	require.NoError(t, err)
	require.Nil(t, detached.ManagerID)

	forest, err := f.users.Hierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	require.Equal(t, ceo.ID, forest[0].Item.ID)
	require.Equal(t, 2, forest[0].Total)
	require.Equal(t, lead.ID, forest[1].Item.ID)
}

type recordingUsers struct {
	user.Repository
	calls *[]string
}

func (r recordingUsers) LockHierarchy(ctx context.Context) error {
	*r.calls = append(*r.calls, "lock")
	return r.Repository.LockHierarchy(ctx)
}

func (r recordingUsers) ManagerOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	*r.calls = append(*r.calls, "manager")
	return r.Repository.ManagerOf(ctx, id)
}

func TestUserService_ManagerChangeLocksReportingLines(t *testing.T) {
	t.Parallel()
	var calls []string
	f := setupWith(t, func(r user.Repository) user.Repository {
		return recordingUsers{Repository: r, calls: &calls}
	})
	ctx := context.Background()

	ceo := f.create(t, "CEO", "ceo@example.com", nil)
	vp := f.create(t, "VP", "vp@example.com", &ceo.ID)

	calls = nil
	rename := "Vice President"
	_, err := f.users.Update(ctx, vp.ID, user.UpdateParams{Name: &rename})
	require.NoError(t, err)
	assert.NotContains(t, calls, "lock")

	calls = nil
	_, err = f.users.Update(ctx, ceo.ID, user.UpdateParams{ManagerID: types.Some(vp.ID)})
	requireCode(t, err, serrors.CircularReference)
	require.NotEmpty(t, calls)
	assert.Equal(t, "lock", calls[0])
	assert.Contains(t, calls[1:], "manager")
}

func TestUserService_UpdateIsIdempotent(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	u := f.create(t, "Ada", "ada@example.com", nil)
	var updates int
	f.bus.Subscribe(func(*user.UpdatedEvent) { updates++ })

	*f.clock = f.clock.Add(time.Hour)
	name := "Ada"
	same, err := f.users.Update(ctx, u.ID, user.UpdateParams{Name: &name})
	require.NoError(t, err)
	require.Equal(t, u.UpdatedAt, same.UpdatedAt)
	require.Zero(t, updates)

	email := "Ada.L@Example.com"
	changed, err := f.users.Update(ctx, u.ID, user.UpdateParams{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "ada.l@example.com", changed.Email)
	require.Equal(t, *f.clock, changed.UpdatedAt)
	require.Equal(t, "Ada", changed.Name)
	require.Equal(t, 1, updates)

	_, err = f.identity.Verify(ctx, "ada.l@example.com", "Passw0rdX")
	require.NoError(t, err)

	blank := "  "
	_, err = f.users.Update(ctx, u.ID, user.UpdateParams{Name: &blank})
	requireCode(t, err, serrors.RequiredName)

	other := f.create(t, "Other", "other@example.com", nil)
	_, err = f.users.Update(ctx, other.ID, user.UpdateParams{Email: &email})
	requireCode(t, err, serrors.EmailExists)

	_, err = f.users.Update(ctx, uuid.New(), user.UpdateParams{Name: &name})
	requireCode(t, err, serrors.NotFound)
}

func TestUserService_StatusAndBan(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()
	u := f.create(t, "Ada", "ada@example.com", nil)

	_, err := f.users.UpdateStatus(ctx, u.ID, "retired")
	requireCode(t, err, serrors.InvalidStatus)

	suspended, err := f.users.UpdateStatus(ctx, u.ID, "suspended")
	require.NoError(t, err)
	require.Equal(t, user.StatusSuspended, suspended.Status)

	until := f.clock.Add(24 * time.Hour)
	banned, err := f.users.Ban(ctx, u.ID, user.BanParams{Reason: " spam ", ExpiresAt: &until})
	require.NoError(t, err)
	require.True(t, banned.Banned)
	require.Equal(t, "spam", banned.BanReason)

	unbanned, err := f.users.Unban(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, unbanned.Banned)
	require.Empty(t, unbanned.BanReason)
	require.Nil(t, unbanned.BanExpires)
}

func TestUserService_Delete(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	boss := f.create(t, "Boss", "boss@example.com", nil)
	report := f.create(t, "Report", "report@example.com", &boss.ID)

	requireCode(t, f.users.Delete(ctx, boss.ID), serrors.HasSubordinates)

	require.NoError(t, f.users.Delete(ctx, report.ID))
	_, err := f.identity.Verify(ctx, "report@example.com", "Passw0rdX")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)

	require.NoError(t, f.users.Delete(ctx, boss.ID))
	requireCode(t, f.users.Delete(ctx, boss.ID), serrors.NotFound)

	// the email is free again
	f.create(t, "Boss", "boss@example.com", nil)
}

func TestUserService_GetAndList(t *testing.T) {
	t.Parallel()
	f := setup(t)
	ctx := context.Background()

	boss := f.create(t, "Boss", "boss@example.com", nil)
	f.create(t, "Amy", "amy@example.com", &boss.ID)
	f.create(t, "Bob", "bob@example.com", &boss.ID)
	_, err := f.users.Update(ctx, boss.ID, user.UpdateParams{DepartmentID: types.Some(f.sales)})
	require.NoError(t, err)

	details, err := f.users.GetByID(ctx, boss.ID)
	require.NoError(t, err)
	require.Nil(t, details.Manager)
	require.Equal(t, &user.DepartmentRef{ID: f.sales, Name: "Sales"}, details.Department)
	require.Len(t, details.Subordinates, 2)

	page, err := f.users.List(ctx, user.FindParams{ManagerID: &boss.ID})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, 1, page.TotalPages)

	page, err = f.users.List(ctx, user.FindParams{})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, 2, page.TotalPages)
}
