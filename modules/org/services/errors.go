package services

import (
	"context"
	"errors"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

var organizationConstraints = map[string]repo.ConstraintCode{
	"organizations_slug_key": {Code: serrors.SlugExists, Message: "an organization with this slug already exists"},
	"organization_members_organization_id_user_id_key": {
		Code: serrors.AlreadyMember, Message: "the user is already a member of this organization",
	},
	"organization_invitations_organization_id_email_key": {
		Code: serrors.InvitationExists, Message: "an invitation for this email is already pending",
	},
	"organization_members_user_id_fkey":             {Code: serrors.UserNotFound, Message: "user not found"},
	"organization_members_organization_id_fkey":     {Code: serrors.NotFound, Message: "organization not found"},
	"organization_invitations_organization_id_fkey": {Code: serrors.NotFound, Message: "organization not found"},
}

func mapStoreError(err error, fallback string) error {
	switch {
	case errors.Is(err, organization.ErrNotFound):
		return serrors.Wrap(serrors.NotFound, "organization not found", err)
	case errors.Is(err, organization.ErrMemberNotFound):
		return serrors.Wrap(serrors.MemberNotFound, "member not found", err)
	case errors.Is(err, organization.ErrInvitationNotFound):
		return serrors.Wrap(serrors.InvitationNotFound, "invitation not found", err)
	}
	return repo.MapError(err, organizationConstraints, fallback)
}

func fail(ctx context.Context, op string, err error, fallback string) error {
	mapped := mapStoreError(err, fallback)
	logger := composables.UseLogger(ctx).WithField("operation", op)
	if e, ok := serrors.As(mapped); ok && e.Status < 500 {
		logger.WithField("code", e.Code).Info("organization mutation rejected")
	} else {
		logger.WithError(err).Error("organization operation failed")
	}
	return mapped
}
