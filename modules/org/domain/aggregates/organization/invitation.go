package organization

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// DefaultInvitationTTL is how long an invitation stays acceptable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organizationId"`
	Email          string           `json:"email"`
	Role           Role             `json:"role"`
	Status         InvitationStatus `json:"status"`
	InvitedBy      uuid.UUID        `json:"invitedBy"`
	ExpiresAt      time.Time        `json:"expiresAt"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// EffectiveStatus reports a pending invitation past its expiry as expired.
func (i Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && !now.Before(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// WithEffectiveStatus returns i with Status replaced by its effective status.
func (i Invitation) WithEffectiveStatus(now time.Time) Invitation {
	i.Status = i.EffectiveStatus(now)
	return i
}

type InviteParams struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// InviteInput is what the invite chain validates.
type InviteInput struct {
	OrganizationID uuid.UUID
	ActorID        uuid.UUID
	Email          string
	Role           Role
}
