package persistence

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

const (
	UsersTable       = "users"
	AccountsTable    = "accounts"
	DepartmentsTable = "departments"
)

// MemoryUsers returns the users table of db with the constraints of the
// Postgres schema declared on it.
func MemoryUsers(db *memstore.DB) *memstore.Table[uuid.UUID, user.User] {
	return memstore.Use[uuid.UUID, user.User](db, UsersTable).
		Unique("users_email_key", func(u user.User) (string, bool) {
			return strings.ToLower(u.Email), u.Email != ""
		})
}

type MemoryUserRepository struct {
	db    *memstore.DB
	users *memstore.Table[uuid.UUID, user.User]
}

func NewMemoryUserRepository(db *memstore.DB) user.Repository {
	users := MemoryUsers(db)
	// users.manager_id ON DELETE SET NULL
	users.OnDelete(func(ctx context.Context, id uuid.UUID) {
		users.UpdateWhere(ctx, managedBy(id), func(u user.User) user.User {
			u.ManagerID = nil
			return u
		})
	})
	return &MemoryUserRepository{db: db, users: users}
}

func managedBy(id uuid.UUID) func(user.User) bool {
	return func(u user.User) bool { return u.ManagerID != nil && *u.ManagerID == id }
}

func (m *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, ok := m.users.Get(ctx, id)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	found := m.users.Filter(ctx, func(u user.User) bool { return strings.EqualFold(u.Email, email) })
	if len(found) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return found[0], nil
}

// LockHierarchy is a no-op: memstore transactions already hold the store lock.
func (m *MemoryUserRepository) LockHierarchy(context.Context) error {
	return nil
}

func (m *MemoryUserRepository) ManagerOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	u, ok := m.users.Get(ctx, id)
	if !ok {
		return nil, false, nil
	}
	return u.ManagerID, true, nil
}

func (m *MemoryUserRepository) List(ctx context.Context, params *user.FindParams) ([]user.User, int, error) {
	search := strings.ToLower(params.Search)
	all := m.users.Filter(ctx, func(u user.User) bool {
		switch {
		case search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search):
			return false
		case params.Role != nil && u.Role != *params.Role:
			return false
		case params.Status != nil && u.Status != *params.Status:
			return false
		case params.DepartmentID != nil && (u.DepartmentID == nil || *u.DepartmentID != *params.DepartmentID):
			return false
		case params.ManagerID != nil && (u.ManagerID == nil || *u.ManagerID != *params.ManagerID):
			return false
		}
		return true
	})
	sortUsers(all, user.Field(params.Pagination.SortBy), params.Pagination.SortOrder)
	return repo.Slice(all, params.Pagination), len(all), nil
}

func sortUsers(users []user.User, field user.Field, order repo.SortOrder) {
	key := func(u user.User) string {
		switch field {
		case user.NameField:
			return strings.ToLower(u.Name)
		case user.EmailField:
			return strings.ToLower(u.Email)
		case user.RoleField:
			return string(u.Role)
		case user.StatusField:
			return string(u.Status)
		}
		return ""
	}
	compare := func(a, b user.User) int {
		if c := strings.Compare(key(a), key(b)); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if order == repo.SortDesc {
			return compare(users[i], users[j]) > 0
		}
		return compare(users[i], users[j]) < 0
	})
}

func (m *MemoryUserRepository) All(ctx context.Context) ([]user.User, error) {
	return m.users.Filter(ctx, nil), nil
}

func (m *MemoryUserRepository) Subordinates(ctx context.Context, managerID uuid.UUID) ([]user.User, error) {
	subs := m.users.Filter(ctx, managedBy(managerID))
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

func (m *MemoryUserRepository) CountSubordinates(ctx context.Context, managerID uuid.UUID) (int, error) {
	return m.users.Count(ctx, managedBy(managerID)), nil
}

func (m *MemoryUserRepository) CountInDepartment(ctx context.Context, departmentID uuid.UUID) (int, error) {
	return m.users.Count(ctx, func(u user.User) bool {
		return u.DepartmentID != nil && *u.DepartmentID == departmentID
	}), nil
}

func (m *MemoryUserRepository) CountByDepartment(ctx context.Context) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for _, u := range m.users.Filter(ctx, func(u user.User) bool { return u.DepartmentID != nil }) {
		counts[*u.DepartmentID]++
	}
	return counts, nil
}

func (m *MemoryUserRepository) checkReferences(ctx context.Context, u user.User) error {
	if !m.db.Exists(ctx, AccountsTable, u.ID) {
		return memstore.ForeignKey(UsersTable, "users_id_fkey")
	}
	if u.ManagerID != nil && !m.users.Has(ctx, *u.ManagerID) {
		return memstore.ForeignKey(UsersTable, "users_manager_id_fkey")
	}
	if u.DepartmentID != nil && !m.db.Exists(ctx, DepartmentsTable, *u.DepartmentID) {
		return memstore.ForeignKey(UsersTable, "users_department_id_fkey")
	}
	return nil
}

func (m *MemoryUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	if err := m.checkReferences(ctx, u); err != nil {
		return user.User{}, err
	}
	if err := m.users.Insert(ctx, u.ID, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (m *MemoryUserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	if err := m.checkReferences(ctx, u); err != nil {
		return user.User{}, err
	}
	existed, err := m.users.Update(ctx, u.ID, u)
	if err != nil {
		return user.User{}, err
	}
	if !existed {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *MemoryUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if !m.users.Delete(ctx, id) {
		return user.ErrNotFound
	}
	return nil
}
