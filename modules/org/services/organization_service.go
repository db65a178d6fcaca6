package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/modules/org/validators"
	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
	"github.com/iota-uz/iota-admin/pkg/validation"
	"github.com/iota-uz/iota-admin/pkg/viewcache"
)

type OrganizationService struct {
	repo            organization.Repository
	members         organization.MemberRepository
	invitations     organization.InvitationRepository
	users           user.Repository
	tx              repo.Transactor
	publisher       eventbus.EventBus
	gate            *validators.PermissionGate
	createChain     *validation.Chain[organization.CreateParams]
	updateChain     *validation.Chain[organization.UpdateInput]
	addMemberChain  *validation.Chain[organization.MemberInput]
	removeChain     *validation.Chain[organization.MemberInput]
	changeRoleChain *validation.Chain[organization.MemberInput]
	inviteChain     *validation.Chain[organization.InviteInput]
	opts            Options
}

func NewOrganizationService(
	repository organization.Repository,
	members organization.MemberRepository,
	invitations organization.InvitationRepository,
	users user.Repository,
	tx repo.Transactor,
	publisher eventbus.EventBus,
	opts Options,
) *OrganizationService {
	v := validators.NewOrganizationValidators(repository, members, invitations, users, opts.now)
	return &OrganizationService{
		repo:            repository,
		members:         members,
		invitations:     invitations,
		users:           users,
		tx:              tx,
		publisher:       publisher,
		gate:            v.Gate(),
		createChain:     v.CreateChain(),
		updateChain:     v.UpdateChain(),
		addMemberChain:  v.AddMemberChain(),
		removeChain:     v.RemoveMemberChain(),
		changeRoleChain: v.UpdateMemberRoleChain(),
		inviteChain:     v.InviteChain(),
		opts:            opts,
	}
}

func (s *OrganizationService) invalidate(id uuid.UUID) {
	viewcache.Publish(s.publisher, viewcache.PathOrganizations, viewcache.OrganizationPath(id.String()))
}

func (s *OrganizationService) authorize(ctx context.Context, organizationID, actorID uuid.UUID, allowed ...organization.Role) error {
	res, err := s.gate.Authorize(ctx, organizationID, actorID, allowed...)
	if err != nil {
		return err
	}
	return res.Err()
}

// Create stores the organization and makes the actor its OWNER in the same
// transaction.
func (s *OrganizationService) Create(ctx context.Context, actorID uuid.UUID, params organization.CreateParams) (organization.Organization, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Slug = strings.TrimSpace(params.Slug)
	params.Description = strings.TrimSpace(params.Description)

	created, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Organization, error) {
		if err := s.createChain.Run(txCtx, params); err != nil {
			return organization.Organization{}, err
		}
		now := s.opts.now()
		o, err := s.repo.Create(txCtx, organization.Organization{
			ID:          uuid.New(),
			Name:        params.Name,
			Slug:        params.Slug,
			Description: params.Description,
			Logo:        params.Logo,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return organization.Organization{}, err
		}
		if _, err := s.members.Add(txCtx, organization.Member{
			ID:             uuid.New(),
			OrganizationID: o.ID,
			UserID:         actorID,
			Role:           organization.RoleOwner,
			CreatedAt:      now,
		}); err != nil {
			return organization.Organization{}, err
		}
		return o, nil
	})
	if err != nil {
		return organization.Organization{}, fail(ctx, "create", err, serrors.CreateError)
	}

	s.publisher.Publish(organization.NewCreatedEvent(ctx, actorID, created))
	s.invalidate(created.ID)
	return created, nil
}

// Update requires the actor to be an OWNER or ADMIN.
func (s *OrganizationService) Update(
	ctx context.Context,
	actorID, id uuid.UUID,
	params organization.UpdateParams,
) (organization.Organization, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}
	if params.Slug != nil {
		slug := strings.TrimSpace(*params.Slug)
		params.Slug = &slug
	}
	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		params.Description = &description
	}

	var before organization.Organization
	updated, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Organization, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return organization.Organization{}, err
		}
		before = current
		if err := s.updateChain.Run(txCtx, organization.UpdateInput{ID: id, ActorID: actorID, Params: params}); err != nil {
			return organization.Organization{}, err
		}
		next := params.Apply(current)
		if next.SameState(current) {
			return current, nil
		}
		next.UpdatedAt = s.opts.now()
		return s.repo.Update(txCtx, next)
	})
	if err != nil {
		return organization.Organization{}, fail(ctx, "update", err, serrors.UpdateError)
	}

	if !updated.SameState(before) {
		s.publisher.Publish(organization.NewUpdatedEvent(ctx, actorID, before, updated))
		s.invalidate(id)
	}
	return updated, nil
}

// Delete requires the OWNER role. Members and invitations go with the
// organization.
func (s *OrganizationService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	deleted, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Organization, error) {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return organization.Organization{}, err
		}
		if err := s.authorize(txCtx, id, actorID, organization.RoleOwner); err != nil {
			return organization.Organization{}, err
		}
		return current, s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return fail(ctx, "delete", err, serrors.DeleteError)
	}

	s.publisher.Publish(organization.NewDeletedEvent(ctx, actorID, deleted))
	s.invalidate(id)
	return nil
}

func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return organization.Organization{}, fail(ctx, "get", err, serrors.FetchError)
	}
	return o, nil
}

func (s *OrganizationService) List(ctx context.Context, params organization.FindParams) (repo.Page[organization.Organization], error) {
	params.Pagination = s.opts.paginate(params.Pagination)
	organizations, total, err := s.repo.List(ctx, &params)
	if err != nil {
		return repo.Page[organization.Organization]{}, fail(ctx, "list", err, serrors.FetchError)
	}
	return repo.NewPage(organizations, total, params.Pagination), nil
}

// ListMembers is open to every member of the organization.
func (s *OrganizationService) ListMembers(ctx context.Context, actorID, organizationID uuid.UUID) ([]organization.Member, error) {
	members, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) ([]organization.Member, error) {
		if _, err := s.repo.GetByID(txCtx, organizationID); err != nil {
			return nil, err
		}
		if err := s.authorize(txCtx, organizationID, actorID,
			organization.RoleOwner, organization.RoleAdmin, organization.RoleMember,
		); err != nil {
			return nil, err
		}
		return s.members.List(txCtx, organizationID)
	})
	if err != nil {
		return nil, fail(ctx, "list_members", err, serrors.FetchError)
	}
	return members, nil
}

func (s *OrganizationService) AddMember(
	ctx context.Context,
	actorID, organizationID uuid.UUID,
	params organization.AddMemberParams,
) (organization.Member, error) {
	role, err := s.parseRole(params.Role)
	if err != nil {
		return organization.Member{}, fail(ctx, "add_member", err, serrors.CreateError)
	}
	in := organization.MemberInput{OrganizationID: organizationID, ActorID: actorID, UserID: params.UserID, Role: role}

	added, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Member, error) {
		if _, err := s.repo.GetByID(txCtx, organizationID); err != nil {
			return organization.Member{}, err
		}
		if err := s.addMemberChain.Run(txCtx, in); err != nil {
			return organization.Member{}, err
		}
		return s.members.Add(txCtx, organization.Member{
			ID:             uuid.New(),
			OrganizationID: organizationID,
			UserID:         params.UserID,
			Role:           role,
			CreatedAt:      s.opts.now(),
		})
	})
	if err != nil {
		return organization.Member{}, fail(ctx, "add_member", err, serrors.CreateError)
	}

	s.publisher.Publish(organization.NewMemberChangedEvent(ctx, actorID, nil, &added))
	s.invalidate(organizationID)
	return added, nil
}

// RemoveMember removes userID from the organization. The OWNER can never be
// removed, so every organization keeps its owner.
func (s *OrganizationService) RemoveMember(ctx context.Context, actorID, organizationID, userID uuid.UUID) error {
	in := organization.MemberInput{OrganizationID: organizationID, ActorID: actorID, UserID: userID}
	removed, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Member, error) {
		if _, err := s.repo.GetByID(txCtx, organizationID); err != nil {
			return organization.Member{}, err
		}
		if err := s.removeChain.Run(txCtx, in); err != nil {
			return organization.Member{}, err
		}
		current, err := s.members.Get(txCtx, organizationID, userID)
		if err != nil {
			return organization.Member{}, err
		}
		return current, s.members.Remove(txCtx, organizationID, userID)
	})
	if err != nil {
		return fail(ctx, "remove_member", err, serrors.DeleteError)
	}

	s.publisher.Publish(organization.NewMemberChangedEvent(ctx, actorID, &removed, nil))
	s.invalidate(organizationID)
	return nil
}

func (s *OrganizationService) UpdateMemberRole(
	ctx context.Context,
	actorID, organizationID, userID uuid.UUID,
	role organization.Role,
) (organization.Member, error) {
	role, err := s.parseRole(role)
	if err != nil {
		return organization.Member{}, fail(ctx, "update_member_role", err, serrors.UpdateError)
	}
	in := organization.MemberInput{OrganizationID: organizationID, ActorID: actorID, UserID: userID, Role: role}

	var before organization.Member
	updated, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Member, error) {
		if _, err := s.repo.GetByID(txCtx, organizationID); err != nil {
			return organization.Member{}, err
		}
		if err := s.changeRoleChain.Run(txCtx, in); err != nil {
			return organization.Member{}, err
		}
		current, err := s.members.Get(txCtx, organizationID, userID)
		if err != nil {
			return organization.Member{}, err
		}
		before = current
		if current.Role == role {
			return current, nil
		}
		return s.members.UpdateRole(txCtx, organizationID, userID, role)
	})
	if err != nil {
		return organization.Member{}, fail(ctx, "update_member_role", err, serrors.UpdateError)
	}

	if updated.Role != before.Role {
		s.publisher.Publish(organization.NewMemberChangedEvent(ctx, actorID, &before, &updated))
		s.invalidate(organizationID)
	}
	return updated, nil
}

// parseRole normalizes r. An empty role means MEMBER.
func (s *OrganizationService) parseRole(r organization.Role) (organization.Role, error) {
	if strings.TrimSpace(string(r)) == "" {
		return organization.RoleMember, nil
	}
	return organization.NewRole(string(r))
}

// Invite records a pending invitation valid for the configured TTL. A row
// left over for the same email that is no longer pending is reused.
func (s *OrganizationService) Invite(
	ctx context.Context,
	actorID, organizationID uuid.UUID,
	params organization.InviteParams,
) (organization.Invitation, error) {
	role, err := s.parseRole(params.Role)
	if err != nil {
		return organization.Invitation{}, fail(ctx, "invite", err, serrors.CreateError)
	}
	in := organization.InviteInput{
		OrganizationID: organizationID,
		ActorID:        actorID,
		Email:          validation.NormalizeEmail(params.Email),
		Role:           role,
	}

	invitation, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Invitation, error) {
		if _, err := s.repo.GetByID(txCtx, organizationID); err != nil {
			return organization.Invitation{}, err
		}
		if err := s.inviteChain.Run(txCtx, in); err != nil {
			return organization.Invitation{}, err
		}
		now := s.opts.now()
		existing, err := s.invitations.GetByEmail(txCtx, organizationID, in.Email)
		switch {
		case err == nil:
			existing.Role = role
			existing.Status = organization.InvitationPending
			existing.InvitedBy = actorID
			existing.ExpiresAt = now.Add(s.opts.invitationTTL())
			existing.UpdatedAt = now
			return s.invitations.Update(txCtx, existing)
		case !errors.Is(err, organization.ErrInvitationNotFound):
			return organization.Invitation{}, err
		}
		return s.invitations.Create(txCtx, organization.Invitation{
			ID:             uuid.New(),
			OrganizationID: organizationID,
			Email:          in.Email,
			Role:           role,
			Status:         organization.InvitationPending,
			InvitedBy:      actorID,
			ExpiresAt:      now.Add(s.opts.invitationTTL()),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	})
	if err != nil {
		return organization.Invitation{}, fail(ctx, "invite", err, serrors.CreateError)
	}

	s.publisher.Publish(organization.NewInvitationChangedEvent(ctx, actorID, invitation))
	s.invalidate(organizationID)
	return invitation, nil
}

// ListInvitations reports expired pending invitations as EXPIRED.
func (s *OrganizationService) ListInvitations(ctx context.Context, actorID, organizationID uuid.UUID) ([]organization.Invitation, error) {
	invitations, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) ([]organization.Invitation, error) {
		if _, err := s.repo.GetByID(txCtx, organizationID); err != nil {
			return nil, err
		}
		if err := s.authorize(txCtx, organizationID, actorID, organization.Managers...); err != nil {
			return nil, err
		}
		return s.invitations.List(txCtx, organizationID)
	})
	if err != nil {
		return nil, fail(ctx, "list_invitations", err, serrors.FetchError)
	}
	now := s.opts.now()
	for i := range invitations {
		invitations[i] = invitations[i].WithEffectiveStatus(now)
	}
	return invitations, nil
}

// respondable loads an invitation the actor may answer: still pending and
// addressed to the actor's email.
func (s *OrganizationService) respondable(ctx context.Context, actorID, id uuid.UUID) (organization.Invitation, error) {
	invitation, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return organization.Invitation{}, err
	}
	switch invitation.EffectiveStatus(s.opts.now()) {
	case organization.InvitationPending:
	case organization.InvitationExpired:
		return organization.Invitation{}, serrors.New(serrors.InvitationExpired, "the invitation has expired")
	default:
		return organization.Invitation{}, serrors.New(serrors.InvitationNotPending, "the invitation was already answered")
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if errors.Is(err, user.ErrNotFound) {
		return organization.Invitation{}, serrors.New(serrors.UserNotFound, "user not found")
	}
	if err != nil {
		return organization.Invitation{}, err
	}
	if !strings.EqualFold(actor.Email, invitation.Email) {
		return organization.Invitation{}, serrors.New(serrors.InsufficientPermissions, "the invitation is addressed to another email")
	}
	return invitation, nil
}

// AcceptInvitation joins the actor to the organization with the invited role.
func (s *OrganizationService) AcceptInvitation(ctx context.Context, actorID, id uuid.UUID) (organization.Member, error) {
	var invitation organization.Invitation
	member, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Member, error) {
		var err error
		if invitation, err = s.respondable(txCtx, actorID, id); err != nil {
			return organization.Member{}, err
		}
		if _, err := s.members.Get(txCtx, invitation.OrganizationID, actorID); err == nil {
			return organization.Member{}, serrors.New(serrors.AlreadyMember, "the user is already a member of this organization")
		} else if !errors.Is(err, organization.ErrMemberNotFound) {
			return organization.Member{}, err
		}
		now := s.opts.now()
		added, err := s.members.Add(txCtx, organization.Member{
			ID:             uuid.New(),
			OrganizationID: invitation.OrganizationID,
			UserID:         actorID,
			Role:           invitation.Role,
			CreatedAt:      now,
		})
		if err != nil {
			return organization.Member{}, err
		}
		invitation.Status = organization.InvitationAccepted
		invitation.UpdatedAt = now
		if invitation, err = s.invitations.Update(txCtx, invitation); err != nil {
			return organization.Member{}, err
		}
		return added, nil
	})
	if err != nil {
		return organization.Member{}, fail(ctx, "accept_invitation", err, serrors.UpdateError)
	}

	s.publisher.Publish(organization.NewInvitationChangedEvent(ctx, actorID, invitation))
	s.publisher.Publish(organization.NewMemberChangedEvent(ctx, actorID, nil, &member))
	s.invalidate(member.OrganizationID)
	return member, nil
}

func (s *OrganizationService) RejectInvitation(ctx context.Context, actorID, id uuid.UUID) (organization.Invitation, error) {
	invitation, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Invitation, error) {
		invitation, err := s.respondable(txCtx, actorID, id)
		if err != nil {
			return organization.Invitation{}, err
		}
		invitation.Status = organization.InvitationRejected
		invitation.UpdatedAt = s.opts.now()
		return s.invitations.Update(txCtx, invitation)
	})
	if err != nil {
		return organization.Invitation{}, fail(ctx, "reject_invitation", err, serrors.UpdateError)
	}

	s.publisher.Publish(organization.NewInvitationChangedEvent(ctx, actorID, invitation))
	s.invalidate(invitation.OrganizationID)
	return invitation, nil
}

// CancelInvitation withdraws a pending invitation. Only managers of the
// inviting organization may cancel.
func (s *OrganizationService) CancelInvitation(ctx context.Context, actorID, id uuid.UUID) error {
	cancelled, err := repo.InTxResult(ctx, s.tx, func(txCtx context.Context) (organization.Invitation, error) {
		invitation, err := s.invitations.GetByID(txCtx, id)
		if err != nil {
			return organization.Invitation{}, err
		}
		if err := s.authorize(txCtx, invitation.OrganizationID, actorID, organization.Managers...); err != nil {
			return organization.Invitation{}, err
		}
		if invitation.EffectiveStatus(s.opts.now()) != organization.InvitationPending {
			return organization.Invitation{}, serrors.New(serrors.InvitationNotPending, "only pending invitations can be cancelled")
		}
		return invitation, s.invitations.Delete(txCtx, id)
	})
	if err != nil {
		return fail(ctx, "cancel_invitation", err, serrors.DeleteError)
	}

	s.invalidate(cancelled.OrganizationID)
	return nil
}
