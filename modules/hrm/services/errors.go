package services

import (
	"context"
	"errors"

	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

var departmentConstraints = map[string]repo.ConstraintCode{
	"departments_parent_id_fkey": {Code: serrors.ParentNotFound, Message: "parent department not found"},
}

func mapStoreError(err error, fallback string) error {
	if errors.Is(err, department.ErrNotFound) {
		return serrors.Wrap(serrors.NotFound, "department not found", err)
	}
	return repo.MapError(err, departmentConstraints, fallback)
}

func fail(ctx context.Context, op string, err error, fallback string) error {
	mapped := mapStoreError(err, fallback)
	logger := composables.UseLogger(ctx).WithField("operation", op)
	if e, ok := serrors.As(mapped); ok && e.Status < 500 {
		logger.WithField("code", e.Code).Info("department mutation rejected")
	} else {
		logger.WithError(err).Error("department operation failed")
	}
	return mapped
}
