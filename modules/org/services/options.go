package services

import (
	"time"

	"github.com/iota-uz/iota-admin/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

type Options struct {
	PageSize    int
	MaxPageSize int
	// InvitationTTL defaults to organization.DefaultInvitationTTL.
	InvitationTTL time.Duration
	Now           func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o Options) invitationTTL() time.Duration {
	if o.InvitationTTL > 0 {
		return o.InvitationTTL
	}
	return organization.DefaultInvitationTTL
}

func (o Options) paginate(p repo.Pagination) repo.Pagination {
	return p.Normalize(o.PageSize, o.MaxPageSize, organization.SortFields, string(organization.CreatedAtField))
}
