package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

const (
	memberFindQuery = `
        SELECT
            m.id,
            m.organization_id,
            m.user_id,
            m.role,
            u.name,
            u.email,
            m.created_at
        FROM organization_members m
        JOIN users u ON u.id = m.user_id`

	memberInsertQuery = `
        INSERT INTO organization_members (id, organization_id, user_id, role, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	memberUpdateRoleQuery = `
        UPDATE organization_members SET role = $3
        WHERE organization_id = $1 AND user_id = $2`

	memberDeleteQuery = `DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2`
)

type PgMemberRepository struct{}

func NewMemberRepository() organization.MemberRepository {
	return &PgMemberRepository{}
}

func (g *PgMemberRepository) Get(ctx context.Context, organizationID, userID uuid.UUID) (organization.Member, error) {
	members, err := g.queryMembers(ctx,
		repo.Join(memberFindQuery, "WHERE m.organization_id = $1 AND m.user_id = $2"),
		organizationID, userID,
	)
	if err != nil {
		return organization.Member{}, errors.Wrap(err, "failed to get organization member")
	}
	if len(members) == 0 {
		return organization.Member{}, organization.ErrMemberNotFound
	}
	return members[0], nil
}

func (g *PgMemberRepository) List(ctx context.Context, organizationID uuid.UUID) ([]organization.Member, error) {
	members, err := g.queryMembers(ctx,
		repo.Join(memberFindQuery, "WHERE m.organization_id = $1 ORDER BY m.created_at, m.id"),
		organizationID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list organization members")
	}
	return members, nil
}

func (g *PgMemberRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]organization.Member, error) {
	members, err := g.queryMembers(ctx,
		repo.Join(memberFindQuery, "WHERE m.user_id = $1 ORDER BY m.created_at, m.id"),
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list memberships of user")
	}
	return members, nil
}

func (g *PgMemberRepository) Add(ctx context.Context, m organization.Member) (organization.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Member{}, errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, memberInsertQuery, m.ID, m.OrganizationID, m.UserID, m.Role, m.CreatedAt); err != nil {
		return organization.Member{}, errors.Wrap(err, "failed to insert organization member")
	}
	return g.Get(ctx, m.OrganizationID, m.UserID)
}

func (g *PgMemberRepository) UpdateRole(ctx context.Context, organizationID, userID uuid.UUID, role organization.Role) (organization.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Member{}, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, memberUpdateRoleQuery, organizationID, userID, role)
	if err != nil {
		return organization.Member{}, errors.Wrap(err, "failed to update organization member role")
	}
	if tag.RowsAffected() == 0 {
		return organization.Member{}, organization.ErrMemberNotFound
	}
	return g.Get(ctx, organizationID, userID)
}

func (g *PgMemberRepository) Remove(ctx context.Context, organizationID, userID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, memberDeleteQuery, organizationID, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete organization member")
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrMemberNotFound
	}
	return nil
}

func (g *PgMemberRepository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]organization.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []organization.Member
	for rows.Next() {
		var m organization.Member
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.Name, &m.Email, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
