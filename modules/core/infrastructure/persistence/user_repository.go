package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

const (
	userFindQuery = `
        SELECT
            u.id,
            u.name,
            u.email,
            u.role,
            u.status,
            u.department_id,
            u.manager_id,
            u.banned,
            u.ban_reason,
            u.ban_expires,
            u.created_at,
            u.updated_at
        FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userManagerQuery = `SELECT manager_id FROM users WHERE id = $1`

	userCountSubordinatesQuery = `SELECT COUNT(*) FROM users WHERE manager_id = $1`

	userCountInDepartmentQuery = `SELECT COUNT(*) FROM users WHERE department_id = $1`

	userCountByDepartmentQuery = `
        SELECT department_id, COUNT(*)
        FROM users
        WHERE department_id IS NOT NULL
        GROUP BY department_id`

	userInsertQuery = `
        INSERT INTO users (
            id, name, email, role, status, department_id, manager_id,
            banned, ban_reason, ban_expires, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	userUpdateQuery = `
        UPDATE users SET
            name = $2,
            email = $3,
            role = $4,
            status = $5,
            department_id = $6,
            manager_id = $7,
            banned = $8,
            ban_reason = $9,
            ban_expires = $10,
            updated_at = $11
        WHERE id = $1`

	userDeleteQuery = `DELETE FROM users WHERE id = $1`
)

type PgUserRepository struct {
	fieldMap map[user.Field]string
}

func NewUserRepository() user.Repository {
	return &PgUserRepository{
		fieldMap: map[user.Field]string{
			user.NameField:      "u.name",
			user.EmailField:     "u.email",
			user.RoleField:      "u.role",
			user.StatusField:    "u.status",
			user.CreatedAtField: "u.created_at",
		},
	}
}

func (g *PgUserRepository) buildUserFilters(params *user.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(u.name ILIKE $%d OR u.email ILIKE $%d)", len(args), len(args)))
	}
	if params.Role != nil {
		args = append(args, string(*params.Role))
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where = append(where, fmt.Sprintf("u.status = $%d", len(args)))
	}
	if params.DepartmentID != nil {
		args = append(args, *params.DepartmentID)
		where = append(where, fmt.Sprintf("u.department_id = $%d", len(args)))
	}
	if params.ManagerID != nil {
		args = append(args, *params.ManagerID)
		where = append(where, fmt.Sprintf("u.manager_id = $%d", len(args)))
	}
	return where, args
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	users, err := g.queryUsers(ctx, repo.Join(userFindQuery, "WHERE u.id = $1"), id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get user by id")
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	users, err := g.queryUsers(ctx, repo.Join(userFindQuery, "WHERE u.email = $1"), email)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get user by email")
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) LockHierarchy(ctx context.Context) error {
	if err := composables.AdvisoryXactLock(ctx, "users.manager_id"); err != nil {
		return errors.Wrap(err, "failed to lock reporting lines")
	}
	return nil
}

func (g *PgUserRepository) ManagerOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get transaction")
	}
	var manager *uuid.UUID
	if err := tx.QueryRow(ctx, userManagerQuery, id).Scan(&manager); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to get manager")
	}
	return manager, true, nil
}

func (g *PgUserRepository) List(ctx context.Context, params *user.FindParams) ([]user.User, int, error) {
	where, args := g.buildUserFilters(params)

	sortBy := g.fieldMap[user.Field(params.Pagination.SortBy)]
	if sortBy == "" {
		sortBy = g.fieldMap[user.CreatedAtField]
	}
	order := "ASC"
	if params.Pagination.SortOrder == repo.SortDesc {
		order = "DESC"
	}

	query := repo.Join(
		userFindQuery,
		repo.JoinWhere(where...),
		fmt.Sprintf("ORDER BY %s %s, u.id", sortBy, order),
		repo.FormatLimitOffset(params.Pagination.Limit(), params.Pagination.Offset()),
	)
	users, err := g.queryUsers(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list users")
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to get transaction")
	}
	var total int
	if err := tx.QueryRow(ctx, repo.Join(userCountQuery, repo.JoinWhere(where...)), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count users")
	}
	return users, total, nil
}

func (g *PgUserRepository) All(ctx context.Context) ([]user.User, error) {
	users, err := g.queryUsers(ctx, repo.Join(userFindQuery, "ORDER BY u.created_at, u.id"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get all users")
	}
	return users, nil
}

func (g *PgUserRepository) Subordinates(ctx context.Context, managerID uuid.UUID) ([]user.User, error) {
	users, err := g.queryUsers(ctx, repo.Join(userFindQuery, "WHERE u.manager_id = $1 ORDER BY u.name, u.id"), managerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get subordinates")
	}
	return users, nil
}

func (g *PgUserRepository) CountSubordinates(ctx context.Context, managerID uuid.UUID) (int, error) {
	return g.count(ctx, userCountSubordinatesQuery, managerID)
}

func (g *PgUserRepository) CountInDepartment(ctx context.Context, departmentID uuid.UUID) (int, error) {
	return g.count(ctx, userCountInDepartmentQuery, departmentID)
}

func (g *PgUserRepository) CountByDepartment(ctx context.Context) (map[uuid.UUID]int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, userCountByDepartmentQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count users by department")
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan department count")
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (g *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(
		ctx,
		userInsertQuery,
		u.ID,
		u.Name,
		u.Email,
		string(u.Role),
		string(u.Status),
		u.DepartmentID,
		u.ManagerID,
		u.Banned,
		u.BanReason,
		u.BanExpires,
		u.CreatedAt,
		u.UpdatedAt,
	); err != nil {
		return user.User{}, errors.Wrap(err, "failed to insert user")
	}
	return g.GetByID(ctx, u.ID)
}

func (g *PgUserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(
		ctx,
		userUpdateQuery,
		u.ID,
		u.Name,
		u.Email,
		string(u.Role),
		string(u.Status),
		u.DepartmentID,
		u.ManagerID,
		u.Banned,
		u.BanReason,
		u.BanExpires,
		u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return user.User{}, user.ErrNotFound
	}
	return g.GetByID(ctx, u.ID)
}

func (g *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, userDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (g *PgUserRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var n int
	if err := tx.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return n, nil
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		var role, status string
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&role,
			&status,
			&u.DepartmentID,
			&u.ManagerID,
			&u.Banned,
			&u.BanReason,
			&u.BanExpires,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u.Role = user.Role(role)
		u.Status = user.Status(status)
		users = append(users, u)
	}
	return users, rows.Err()
}
