package services

import (
	"time"

	"github.com/iota-uz/iota-admin/pkg/repo"
)

type Options struct {
	PageSize    int
	MaxPageSize int
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o Options) paginate(p repo.Pagination, sortFields []string, defaultSort string) repo.Pagination {
	return p.Normalize(o.PageSize, o.MaxPageSize, sortFields, defaultSort)
}
