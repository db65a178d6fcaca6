package department

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-admin/pkg/types"
)

type Department struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Ref struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (d Department) Ref() Ref {
	return Ref{ID: d.ID, Name: d.Name}
}

// Details is a department with its parent, direct children and the number
// of users assigned to it.
type Details struct {
	Department
	Parent    *Ref  `json:"parent"`
	Children  []Ref `json:"children"`
	UserCount int   `json:"userCount"`
}

type CreateParams struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
}

type UpdateParams struct {
	Name        *string                   `json:"name"`
	Description *string                   `json:"description"`
	ParentID    types.Optional[uuid.UUID] `json:"parentId"`
}

type UpdateInput struct {
	ID     uuid.UUID
	Params UpdateParams
}

func (p UpdateParams) Apply(d Department) Department {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	d.ParentID = p.ParentID.Apply(d.ParentID)
	return d
}

// SameState reports whether d and o hold the same values, ignoring UpdatedAt.
func (d Department) SameState(o Department) bool {
	sameParent := d.ParentID == nil && o.ParentID == nil ||
		d.ParentID != nil && o.ParentID != nil && *d.ParentID == *o.ParentID
	return d.ID == o.ID &&
		d.Name == o.Name &&
		d.Description == o.Description &&
		sameParent &&
		d.CreatedAt.Equal(o.CreatedAt)
}
