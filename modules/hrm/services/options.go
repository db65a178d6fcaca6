package services

import (
	"time"

	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/repo"
)

type Options struct {
	PageSize    int
	MaxPageSize int
	Now         func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o Options) paginate(p repo.Pagination) repo.Pagination {
	return p.Normalize(o.PageSize, o.MaxPageSize, department.SortFields, defaultSort)
}
