package organization

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/types"
)

type Organization struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Logo        *string   `json:"logo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateParams struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Logo        *string `json:"logo"`
}

type UpdateParams struct {
	Name        *string                `json:"name"`
	Slug        *string                `json:"slug"`
	Description *string                `json:"description"`
	Logo        types.Optional[string] `json:"logo"`
}

// UpdateInput is what the update chain validates: who changes which
// organization and how.
type UpdateInput struct {
	ID      uuid.UUID
	ActorID uuid.UUID
	Params  UpdateParams
}

func (p UpdateParams) Apply(o Organization) Organization {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Slug != nil {
		o.Slug = *p.Slug
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	o.Logo = p.Logo.Apply(o.Logo)
	return o
}

// SameState reports whether o and other hold the same values, ignoring UpdatedAt.
func (o Organization) SameState(other Organization) bool {
	sameLogo := o.Logo == nil && other.Logo == nil ||
		o.Logo != nil && other.Logo != nil && *o.Logo == *other.Logo
	return o.ID == other.ID &&
		o.Name == other.Name &&
		o.Slug == other.Slug &&
		o.Description == other.Description &&
		sameLogo &&
		o.CreatedAt.Equal(other.CreatedAt)
}
