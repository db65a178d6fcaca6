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
	invitationFindQuery = `
        SELECT
            i.id,
            i.organization_id,
            i.email,
            i.role,
            i.status,
            i.invited_by,
            i.expires_at,
            i.created_at,
            i.updated_at
        FROM organization_invitations i`

	invitationInsertQuery = `
        INSERT INTO organization_invitations (
            id, organization_id, email, role, status, invited_by, expires_at, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	invitationUpdateQuery = `
        UPDATE organization_invitations SET
            role = $2,
            status = $3,
            invited_by = $4,
            expires_at = $5,
            updated_at = $6
        WHERE id = $1`

	invitationDeleteQuery = `DELETE FROM organization_invitations WHERE id = $1`
)

type PgInvitationRepository struct{}

func NewInvitationRepository() organization.InvitationRepository {
	return &PgInvitationRepository{}
}

func (g *PgInvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Invitation, error) {
	return g.getOne(ctx, "WHERE i.id = $1", id)
}

func (g *PgInvitationRepository) GetByEmail(ctx context.Context, organizationID uuid.UUID, email string) (organization.Invitation, error) {
	return g.getOne(ctx, "WHERE i.organization_id = $1 AND i.email = $2", organizationID, email)
}

func (g *PgInvitationRepository) getOne(ctx context.Context, where string, args ...interface{}) (organization.Invitation, error) {
	invitations, err := g.queryInvitations(ctx, repo.Join(invitationFindQuery, where), args...)
	if err != nil {
		return organization.Invitation{}, errors.Wrap(err, "failed to get invitation")
	}
	if len(invitations) == 0 {
		return organization.Invitation{}, organization.ErrInvitationNotFound
	}
	return invitations[0], nil
}

func (g *PgInvitationRepository) List(ctx context.Context, organizationID uuid.UUID) ([]organization.Invitation, error) {
	invitations, err := g.queryInvitations(ctx,
		repo.Join(invitationFindQuery, "WHERE i.organization_id = $1 ORDER BY i.created_at DESC, i.id"),
		organizationID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list invitations")
	}
	return invitations, nil
}

func (g *PgInvitationRepository) Create(ctx context.Context, i organization.Invitation) (organization.Invitation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Invitation{}, errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, invitationInsertQuery,
		i.ID, i.OrganizationID, i.Email, i.Role, i.Status, i.InvitedBy, i.ExpiresAt, i.CreatedAt, i.UpdatedAt,
	); err != nil {
		return organization.Invitation{}, errors.Wrap(err, "failed to insert invitation")
	}
	return g.GetByID(ctx, i.ID)
}

func (g *PgInvitationRepository) Update(ctx context.Context, i organization.Invitation) (organization.Invitation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Invitation{}, errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, invitationUpdateQuery, i.ID, i.Role, i.Status, i.InvitedBy, i.ExpiresAt, i.UpdatedAt)
	if err != nil {
		return organization.Invitation{}, errors.Wrap(err, "failed to update invitation")
	}
	if tag.RowsAffected() == 0 {
		return organization.Invitation{}, organization.ErrInvitationNotFound
	}
	return g.GetByID(ctx, i.ID)
}

func (g *PgInvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, invitationDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete invitation")
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrInvitationNotFound
	}
	return nil
}

func (g *PgInvitationRepository) queryInvitations(ctx context.Context, query string, args ...interface{}) ([]organization.Invitation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []organization.Invitation
	for rows.Next() {
		var i organization.Invitation
		if err := rows.Scan(
			&i.ID, &i.OrganizationID, &i.Email, &i.Role, &i.Status, &i.InvitedBy, &i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, i)
	}
	return invitations, rows.Err()
}
