package persistence

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	corepersistence "github.com/iota-uz/iota-admin/modules/core/infrastructure/persistence"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/memstore"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

type MemoryDepartmentRepository struct {
	departments *memstore.Table[uuid.UUID, department.Department]
}

func NewMemoryDepartmentRepository(db *memstore.DB) department.Repository {
	departments := memstore.Use[uuid.UUID, department.Department](db, corepersistence.DepartmentsTable)
	users := corepersistence.MemoryUsers(db)
	// departments.parent_id and users.department_id ON DELETE SET NULL
	departments.OnDelete(func(ctx context.Context, id uuid.UUID) {
		departments.UpdateWhere(ctx, childOf(id), func(d department.Department) department.Department {
			d.ParentID = nil
			return d
		})
		users.UpdateWhere(ctx, func(u user.User) bool {
			return u.DepartmentID != nil && *u.DepartmentID == id
		}, func(u user.User) user.User {
			u.DepartmentID = nil
			return u
		})
	})
	return &MemoryDepartmentRepository{departments: departments}
}

func childOf(id uuid.UUID) func(department.Department) bool {
	return func(d department.Department) bool { return d.ParentID != nil && *d.ParentID == id }
}

func (m *MemoryDepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (department.Department, error) {
	d, ok := m.departments.Get(ctx, id)
	if !ok {
		return department.Department{}, department.ErrNotFound
	}
	return d, nil
}

// LockHierarchy is a no-op: memstore transactions already hold the store lock.
func (m *MemoryDepartmentRepository) LockHierarchy(context.Context) error {
	return nil
}

func (m *MemoryDepartmentRepository) ParentOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	d, ok := m.departments.Get(ctx, id)
	if !ok {
		return nil, false, nil
	}
	return d.ParentID, true, nil
}

func (m *MemoryDepartmentRepository) List(ctx context.Context, params *department.FindParams) ([]department.Department, int, error) {
	search := strings.ToLower(params.Search)
	all := m.departments.Filter(ctx, func(d department.Department) bool {
		switch {
		case search != "" && !strings.Contains(strings.ToLower(d.Name), search):
			return false
		case params.ParentID != nil && (d.ParentID == nil || *d.ParentID != *params.ParentID):
			return false
		case params.RootsOnly && d.ParentID != nil:
			return false
		}
		return true
	})
	compare := func(a, b department.Department) int {
		if department.Field(params.Pagination.SortBy) != department.CreatedAtField {
			if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
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

func (m *MemoryDepartmentRepository) All(ctx context.Context) ([]department.Department, error) {
	all := m.departments.Filter(ctx, nil)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (m *MemoryDepartmentRepository) Children(ctx context.Context, id uuid.UUID) ([]department.Department, error) {
	children := m.departments.Filter(ctx, childOf(id))
	sort.SliceStable(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

func (m *MemoryDepartmentRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	return m.departments.Count(ctx, childOf(id)), nil
}

func (m *MemoryDepartmentRepository) checkParent(ctx context.Context, d department.Department) error {
	if d.ParentID != nil && !m.departments.Has(ctx, *d.ParentID) {
		return memstore.ForeignKey(corepersistence.DepartmentsTable, "departments_parent_id_fkey")
	}
	return nil
}

func (m *MemoryDepartmentRepository) Create(ctx context.Context, d department.Department) (department.Department, error) {
	if err := m.checkParent(ctx, d); err != nil {
		return department.Department{}, err
	}
	if err := m.departments.Insert(ctx, d.ID, d); err != nil {
		return department.Department{}, err
	}
	return d, nil
}

func (m *MemoryDepartmentRepository) Update(ctx context.Context, d department.Department) (department.Department, error) {
	if err := m.checkParent(ctx, d); err != nil {
		return department.Department{}, err
	}
	existed, err := m.departments.Update(ctx, d.ID, d)
	if err != nil {
		return department.Department{}, err
	}
	if !existed {
		return department.Department{}, department.ErrNotFound
	}
	return d, nil
}

func (m *MemoryDepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if !m.departments.Delete(ctx, id) {
		return department.ErrNotFound
	}
	return nil
}
