package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

const (
	departmentFindQuery = `
        SELECT
            d.id,
            d.name,
            d.description,
            d.parent_id,
            d.created_at,
            d.updated_at
        FROM departments d`

	departmentCountQuery = `SELECT COUNT(d.id) FROM departments d`

	departmentParentQuery = `SELECT parent_id FROM departments WHERE id = $1`

	departmentCountChildrenQuery = `SELECT COUNT(*) FROM departments WHERE parent_id = $1`

	departmentInsertQuery = `
        INSERT INTO departments (id, name, description, parent_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	departmentUpdateQuery = `
        UPDATE departments SET
            name = $2,
            description = $3,
            parent_id = $4,
            updated_at = $5
        WHERE id = $1`

	departmentDeleteQuery = `DELETE FROM departments WHERE id = $1`
)

type PgDepartmentRepository struct {
	fieldMap map[department.Field]string
}

func NewDepartmentRepository() department.Repository {
	return &PgDepartmentRepository{
		fieldMap: map[department.Field]string{
			department.NameField:      "d.name",
			department.CreatedAtField: "d.created_at",
		},
	}
}

func (g *PgDepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (department.Department, error) {
	departments, err := g.queryDepartments(ctx, repo.Join(departmentFindQuery, "WHERE d.id = $1"), id)
	if err != nil {
		return department.Department{}, errors.Wrap(err, "failed to get department by id")
	}
	if len(departments) == 0 {
		return department.Department{}, department.ErrNotFound
	}
	return departments[0], nil
}

func (g *PgDepartmentRepository) LockHierarchy(ctx context.Context) error {
	if err := composables.AdvisoryXactLock(ctx, "departments.parent_id"); err != nil {
		return errors.Wrap(err, "failed to lock department hierarchy")
	}
	return nil
}

func (g *PgDepartmentRepository) ParentOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get transaction")
	}
	var parent *uuid.UUID
	if err := tx.QueryRow(ctx, departmentParentQuery, id).Scan(&parent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to get parent department")
	}
	return parent, true, nil
}

func (g *PgDepartmentRepository) List(ctx context.Context, params *department.FindParams) ([]department.Department, int, error) {
	var where []string
	var args []interface{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("d.name ILIKE $%d", len(args)))
	}
	if params.ParentID != nil {
		args = append(args, *params.ParentID)
		where = append(where, fmt.Sprintf("d.parent_id = $%d", len(args)))
	}
	if params.RootsOnly {
		where = append(where, "d.parent_id IS NULL")
	}

	sortBy := g.fieldMap[department.Field(params.Pagination.SortBy)]
	if sortBy == "" {
		sortBy = g.fieldMap[department.NameField]
	}
	order := "ASC"
	if params.Pagination.SortOrder == repo.SortDesc {
		order = "DESC"
	}

	departments, err := g.queryDepartments(ctx, repo.Join(
		departmentFindQuery,
		repo.JoinWhere(where...),
		fmt.Sprintf("ORDER BY %s %s, d.id", sortBy, order),
		repo.FormatLimitOffset(params.Pagination.Limit(), params.Pagination.Offset()),
	), args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list departments")
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to get transaction")
	}
	var total int
	if err := tx.QueryRow(ctx, repo.Join(departmentCountQuery, repo.JoinWhere(where...)), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count departments")
	}
	return departments, total, nil
}

func (g *PgDepartmentRepository) All(ctx context.Context) ([]department.Department, error) {
	departments, err := g.queryDepartments(ctx, repo.Join(departmentFindQuery, "ORDER BY d.name, d.id"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get all departments")
	}
	return departments, nil
}

func (g *PgDepartmentRepository) Children(ctx context.Context, id uuid.UUID) ([]department.Department, error) {
	departments, err := g.queryDepartments(ctx, repo.Join(departmentFindQuery, "WHERE d.parent_id = $1 ORDER BY d.name, d.id"), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get child departments")
	}
	return departments, nil
}

func (g *PgDepartmentRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var n int
	if err := tx.QueryRow(ctx, departmentCountChildrenQuery, id).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count child departments")
	}
	return n, nil
}

func (g *PgDepartmentRepository) Create(ctx context.Context, d department.Department) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, departmentInsertQuery, d.ID, d.Name, d.Description, d.ParentID, d.CreatedAt, d.UpdatedAt); err != nil {
		return department.Department{}, errors.Wrap(err, "failed to insert department")
	}
	return g.GetByID(ctx, d.ID)
}

func (g *PgDepartmentRepository) Update(ctx context.Context, d department.Department) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, departmentUpdateQuery, d.ID, d.Name, d.Description, d.ParentID, d.UpdatedAt)
	if err != nil {
		return department.Department{}, errors.Wrap(err, "failed to update department")
	}
	if tag.RowsAffected() == 0 {
		return department.Department{}, department.ErrNotFound
	}
	return g.GetByID(ctx, d.ID)
}

func (g *PgDepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, departmentDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete department")
	}
	if tag.RowsAffected() == 0 {
		return department.ErrNotFound
	}
	return nil
}

func (g *PgDepartmentRepository) queryDepartments(ctx context.Context, query string, args ...interface{}) ([]department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		var d department.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.ParentID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
