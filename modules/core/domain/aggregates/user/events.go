package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/composables"
)

type eventMeta struct {
	ActorID    *uuid.UUID
	RequestID  string
	OccurredAt time.Time
}

func newMeta(ctx context.Context) eventMeta {
	m := eventMeta{RequestID: composables.UseRequestID(ctx), OccurredAt: time.Now()}
	if id, err := composables.UseActorID(ctx); err == nil {
		m.ActorID = &id
	}
	return m
}

type CreatedEvent struct {
	eventMeta
	Result User
}

type UpdatedEvent struct {
	eventMeta
	Before User
	Result User
}

type DeletedEvent struct {
	eventMeta
	Result User
}

func NewCreatedEvent(ctx context.Context, result User) *CreatedEvent {
	return &CreatedEvent{eventMeta: newMeta(ctx), Result: result}
}

func NewUpdatedEvent(ctx context.Context, before, result User) *UpdatedEvent {
	return &UpdatedEvent{eventMeta: newMeta(ctx), Before: before, Result: result}
}

func NewDeletedEvent(ctx context.Context, result User) *DeletedEvent {
	return &DeletedEvent{eventMeta: newMeta(ctx), Result: result}
}
