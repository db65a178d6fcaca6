package organization

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/composables"
)

type eventMeta struct {
	ActorID    uuid.UUID
	RequestID  string
	OccurredAt time.Time
}

func newMeta(ctx context.Context, actorID uuid.UUID) eventMeta {
	return eventMeta{ActorID: actorID, RequestID: composables.UseRequestID(ctx), OccurredAt: time.Now()}
}

type CreatedEvent struct {
	eventMeta
	Result Organization
}

type UpdatedEvent struct {
	eventMeta
	Before Organization
	Result Organization
}

type DeletedEvent struct {
	eventMeta
	Result Organization
}

// MemberChangedEvent covers joins, role changes and removals. Before is nil
// for a join and Result is nil for a removal.
type MemberChangedEvent struct {
	eventMeta
	Before *Member
	Result *Member
}

type InvitationChangedEvent struct {
	eventMeta
	Result Invitation
}

func NewCreatedEvent(ctx context.Context, actorID uuid.UUID, result Organization) *CreatedEvent {
	return &CreatedEvent{eventMeta: newMeta(ctx, actorID), Result: result}
}

func NewUpdatedEvent(ctx context.Context, actorID uuid.UUID, before, result Organization) *UpdatedEvent {
	return &UpdatedEvent{eventMeta: newMeta(ctx, actorID), Before: before, Result: result}
}

func NewDeletedEvent(ctx context.Context, actorID uuid.UUID, result Organization) *DeletedEvent {
	return &DeletedEvent{eventMeta: newMeta(ctx, actorID), Result: result}
}

func NewMemberChangedEvent(ctx context.Context, actorID uuid.UUID, before, result *Member) *MemberChangedEvent {
	return &MemberChangedEvent{eventMeta: newMeta(ctx, actorID), Before: before, Result: result}
}

func NewInvitationChangedEvent(ctx context.Context, actorID uuid.UUID, result Invitation) *InvitationChangedEvent {
	return &InvitationChangedEvent{eventMeta: newMeta(ctx, actorID), Result: result}
}
