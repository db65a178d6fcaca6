package validators

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
)

const (
	CreateOrganizationChain = "organization.create"
	UpdateOrganizationChain = "organization.update"
	AddMemberChain          = "organization.add_member"
	RemoveMemberChain       = "organization.remove_member"
	UpdateMemberRoleChain   = "organization.update_member_role"
	InviteChain             = "organization.invite"
)

type OrganizationValidators struct {
	repo        organization.Repository
	members     organization.MemberRepository
	invitations organization.InvitationRepository
	users       user.Repository
	gate        *PermissionGate
	now         func() time.Time
}

func NewOrganizationValidators(
	repo organization.Repository,
	members organization.MemberRepository,
	invitations organization.InvitationRepository,
	users user.Repository,
	now func() time.Time,
) *OrganizationValidators {
	return &OrganizationValidators{
		repo:        repo,
		members:     members,
		invitations: invitations,
		users:       users,
		gate:        NewPermissionGate(members),
		now:         now,
	}
}

func (v *OrganizationValidators) Gate() *PermissionGate {
	return v.gate
}

func (v *OrganizationValidators) CreateChain() *validation.Chain[organization.CreateParams] {
	return validation.NewChain[organization.CreateParams](CreateOrganizationChain,
		validation.Check(func(p organization.CreateParams) validation.Result {
			if r := validation.Required(p.Name, serrors.RequiredName, "organization name is required"); r.Failed() {
				return r
			}
			return validation.Required(p.Slug, serrors.RequiredSlug, "slug is required")
		}),
		validation.Check(func(p organization.CreateParams) validation.Result {
			return validation.Slug(p.Slug)
		}),
		validation.ValidatorFunc[organization.CreateParams](func(ctx context.Context, p organization.CreateParams) (validation.Result, error) {
			return v.slugAvailable(ctx, p.Slug, uuid.Nil)
		}),
	)
}

func (v *OrganizationValidators) UpdateChain() *validation.Chain[organization.UpdateInput] {
	return validation.NewChain[organization.UpdateInput](UpdateOrganizationChain,
		Gate(v.gate, func(in organization.UpdateInput) (uuid.UUID, uuid.UUID) {
			return in.ID, in.ActorID
		}, organization.Managers...),
		validation.Check(func(in organization.UpdateInput) validation.Result {
			if in.Params.Name == nil {
				return validation.OK()
			}
			return validation.Required(*in.Params.Name, serrors.RequiredName, "organization name is required")
		}),
		validation.ValidatorFunc[organization.UpdateInput](func(ctx context.Context, in organization.UpdateInput) (validation.Result, error) {
			if in.Params.Slug == nil {
				return validation.OK(), nil
			}
			if r := validation.Slug(*in.Params.Slug); r.Failed() {
				return r, nil
			}
			return v.slugAvailable(ctx, *in.Params.Slug, in.ID)
		}),
	)
}

// AddMemberChain gates on the actor, then checks the role and the user.
func (v *OrganizationValidators) AddMemberChain() *validation.Chain[organization.MemberInput] {
	return validation.NewChain[organization.MemberInput](AddMemberChain,
		Gate(v.gate, memberTarget, organization.Managers...),
		validation.Check(func(in organization.MemberInput) validation.Result {
			return assignableRole(in.Role)
		}),
		validation.ValidatorFunc[organization.MemberInput](v.userExists),
		validation.ValidatorFunc[organization.MemberInput](v.notMember),
	)
}

// RemoveMemberChain lets members leave on their own. Removing someone else
// needs a manager. Owners are never removed.
func (v *OrganizationValidators) RemoveMemberChain() *validation.Chain[organization.MemberInput] {
	return validation.NewChain[organization.MemberInput](RemoveMemberChain,
		validation.ValidatorFunc[organization.MemberInput](func(ctx context.Context, in organization.MemberInput) (validation.Result, error) {
			if in.ActorID == in.UserID {
				return validation.OK(), nil
			}
			return v.gate.Authorize(ctx, in.OrganizationID, in.ActorID, organization.Managers...)
		}),
		validation.ValidatorFunc[organization.MemberInput](func(ctx context.Context, in organization.MemberInput) (validation.Result, error) {
			return v.targetNotOwner(ctx, in, serrors.CannotRemoveOwner, "the organization owner cannot be removed")
		}),
	)
}

// UpdateMemberRoleChain never moves a member into or out of OWNER.
func (v *OrganizationValidators) UpdateMemberRoleChain() *validation.Chain[organization.MemberInput] {
	return validation.NewChain[organization.MemberInput](UpdateMemberRoleChain,
		Gate(v.gate, memberTarget, organization.Managers...),
		validation.Check(func(in organization.MemberInput) validation.Result {
			return assignableRole(in.Role)
		}),
		validation.ValidatorFunc[organization.MemberInput](func(ctx context.Context, in organization.MemberInput) (validation.Result, error) {
			return v.targetNotOwner(ctx, in, serrors.CannotChangeOwnerRole, "the owner's role cannot be changed")
		}),
	)
}

func (v *OrganizationValidators) InviteChain() *validation.Chain[organization.InviteInput] {
	return validation.NewChain[organization.InviteInput](InviteChain,
		Gate(v.gate, func(in organization.InviteInput) (uuid.UUID, uuid.UUID) {
			return in.OrganizationID, in.ActorID
		}, organization.Managers...),
		validation.Check(func(in organization.InviteInput) validation.Result {
			return validation.Email(in.Email)
		}),
		validation.Check(func(in organization.InviteInput) validation.Result {
			return assignableRole(in.Role)
		}),
		validation.ValidatorFunc[organization.InviteInput](v.noPendingInvitation),
		validation.ValidatorFunc[organization.InviteInput](v.inviteeNotMember),
	)
}

func memberTarget(in organization.MemberInput) (uuid.UUID, uuid.UUID) {
	return in.OrganizationID, in.ActorID
}

func assignableRole(r organization.Role) validation.Result {
	if r == organization.RoleAdmin || r == organization.RoleMember {
		return validation.OK()
	}
	return validation.Fail(serrors.InvalidRole, "role must be one of ADMIN, MEMBER")
}

func (v *OrganizationValidators) slugAvailable(ctx context.Context, slug string, self uuid.UUID) (validation.Result, error) {
	existing, err := v.repo.GetBySlug(ctx, slug)
	if errors.Is(err, organization.ErrNotFound) {
		return validation.OK(), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	if existing.ID == self {
		return validation.OK(), nil
	}
	return validation.Fail(serrors.SlugExists, "an organization with this slug already exists"), nil
}

func (v *OrganizationValidators) userExists(ctx context.Context, in organization.MemberInput) (validation.Result, error) {
	_, err := v.users.GetByID(ctx, in.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return validation.Fail(serrors.UserNotFound, "user not found"), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	return validation.OK(), nil
}

func (v *OrganizationValidators) targetNotOwner(
	ctx context.Context,
	in organization.MemberInput,
	code, message string,
) (validation.Result, error) {
	target, err := v.members.Get(ctx, in.OrganizationID, in.UserID)
	if errors.Is(err, organization.ErrMemberNotFound) {
		return validation.Fail(serrors.MemberNotFound, "member not found"), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	if target.Role == organization.RoleOwner {
		return validation.Fail(code, message), nil
	}
	return validation.OK(), nil
}

func (v *OrganizationValidators) notMember(ctx context.Context, in organization.MemberInput) (validation.Result, error) {
	return v.membership(ctx, in.OrganizationID, in.UserID)
}

func (v *OrganizationValidators) membership(ctx context.Context, organizationID, userID uuid.UUID) (validation.Result, error) {
	_, err := v.members.Get(ctx, organizationID, userID)
	if errors.Is(err, organization.ErrMemberNotFound) {
		return validation.OK(), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	return validation.Fail(serrors.AlreadyMember, "the user is already a member of this organization"), nil
}

// noPendingInvitation rejects a second invitation while one is pending.
// Expired, accepted and rejected rows do not block.
func (v *OrganizationValidators) noPendingInvitation(ctx context.Context, in organization.InviteInput) (validation.Result, error) {
	existing, err := v.invitations.GetByEmail(ctx, in.OrganizationID, validation.NormalizeEmail(in.Email))
	if errors.Is(err, organization.ErrInvitationNotFound) {
		return validation.OK(), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	if existing.EffectiveStatus(v.now()) == organization.InvitationPending {
		return validation.Fail(serrors.InvitationExists, "an invitation for this email is already pending"), nil
	}
	return validation.OK(), nil
}

func (v *OrganizationValidators) inviteeNotMember(ctx context.Context, in organization.InviteInput) (validation.Result, error) {
	u, err := v.users.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if errors.Is(err, user.ErrNotFound) {
		return validation.OK(), nil
	}
	if err != nil {
		return validation.Result{}, err
	}
	return v.membership(ctx, in.OrganizationID, u.ID)
}
