package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

const (
	organizationFindQuery = `
        SELECT
            o.id,
            o.name,
            o.slug,
            o.description,
            o.logo,
            o.created_at,
            o.updated_at
        FROM organizations o`

	organizationCountQuery = `SELECT COUNT(o.id) FROM organizations o`

	organizationInsertQuery = `
        INSERT INTO organizations (id, name, slug, description, logo, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	organizationUpdateQuery = `
        UPDATE organizations SET
            name = $2,
            slug = $3,
            description = $4,
            logo = $5,
            updated_at = $6
        WHERE id = $1`

	organizationDeleteQuery = `DELETE FROM organizations WHERE id = $1`
)

type PgOrganizationRepository struct {
	fieldMap map[organization.Field]string
}

func NewOrganizationRepository() organization.Repository {
	return &PgOrganizationRepository{
		fieldMap: map[organization.Field]string{
			organization.NameField:      "o.name",
			organization.SlugField:      "o.slug",
			organization.CreatedAtField: "o.created_at",
		},
	}
}

func (g *PgOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	return g.getOne(ctx, "WHERE o.id = $1", id)
}

func (g *PgOrganizationRepository) GetBySlug(ctx context.Context, slug string) (organization.Organization, error) {
	return g.getOne(ctx, "WHERE o.slug = $1", slug)
}

func (g *PgOrganizationRepository) getOne(ctx context.Context, where string, arg interface{}) (organization.Organization, error) {
	organizations, err := g.queryOrganizations(ctx, repo.Join(organizationFindQuery, where), arg)
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to get organization")
	}
	if len(organizations) == 0 {
		return organization.Organization{}, organization.ErrNotFound
	}
	return organizations[0], nil
}

func (g *PgOrganizationRepository) List(ctx context.Context, params *organization.FindParams) ([]organization.Organization, int, error) {
	var where []string
	var args []interface{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(o.name ILIKE $%d OR o.slug ILIKE $%d)", len(args), len(args)))
	}
	if params.MemberID != nil {
		args = append(args, *params.MemberID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM organization_members m WHERE m.organization_id = o.id AND m.user_id = $%d)", len(args),
		))
	}

	sortBy := g.fieldMap[organization.Field(params.Pagination.SortBy)]
	if sortBy == "" {
		sortBy = g.fieldMap[organization.CreatedAtField]
	}
	order := "ASC"
	if params.Pagination.SortOrder == repo.SortDesc {
		order = "DESC"
	}

	organizations, err := g.queryOrganizations(ctx, repo.Join(
		organizationFindQuery,
		repo.JoinWhere(where...),
		fmt.Sprintf("ORDER BY %s %s, o.id", sortBy, order),
		repo.FormatLimitOffset(params.Pagination.Limit(), params.Pagination.Offset()),
	), args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list organizations")
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to get transaction")
	}
	var total int
	if err := tx.QueryRow(ctx, repo.Join(organizationCountQuery, repo.JoinWhere(where...)), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count organizations")
	}
	return organizations, total, nil
}

func (g *PgOrganizationRepository) Create(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, organizationInsertQuery,
		o.ID, o.Name, o.Slug, o.Description, o.Logo, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to insert organization")
	}
	return g.GetByID(ctx, o.ID)
}

func (g *PgOrganizationRepository) Update(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, organizationUpdateQuery, o.ID, o.Name, o.Slug, o.Description, o.Logo, o.UpdatedAt)
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to update organization")
	}
	if tag.RowsAffected() == 0 {
		return organization.Organization{}, organization.ErrNotFound
	}
	return g.GetByID(ctx, o.ID)
}

func (g *PgOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, organizationDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete organization")
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}

func (g *PgOrganizationRepository) queryOrganizations(ctx context.Context, query string, args ...interface{}) ([]organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var organizations []organization.Organization
	for rows.Next() {
		var o organization.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Description, &o.Logo, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		organizations = append(organizations, o)
	}
	return organizations, rows.Err()
}
