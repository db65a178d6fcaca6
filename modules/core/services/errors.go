package services

import (
	"context"
	"errors"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/core/domain/identity"
	"github.com/iota-uz/iota-admin/pkg/composables"
	"github.com/iota-uz/iota-admin/pkg/repo"
	"github.com/iota-uz/iota-admin/pkg/serrors"
)

var userConstraints = map[string]repo.ConstraintCode{
	"users_email_key":          {Code: serrors.EmailExists, Message: "a user with this email already exists"},
	"accounts_email_key":       {Code: serrors.EmailExists, Message: "a user with this email already exists"},
	"users_manager_id_fkey":    {Code: serrors.ManagerNotFound, Message: "manager not found"},
	"users_department_id_fkey": {Code: serrors.DepartmentNotFound, Message: "department not found"},
}

func mapStoreError(err error, fallback string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, user.ErrNotFound), errors.Is(err, identity.ErrAccountNotFound):
		return serrors.Wrap(serrors.NotFound, "user not found", err)
	}
	return repo.MapError(err, userConstraints, fallback)
}

// fail maps err and logs it: rejections at Info, faults at Error.
func fail(ctx context.Context, op string, err error, fallback string) error {
	mapped := mapStoreError(err, fallback)
	logger := composables.UseLogger(ctx).WithField("operation", op)
	if e, ok := serrors.As(mapped); ok && e.Status < 500 {
		logger.WithField("code", e.Code).Info("user mutation rejected")
	} else {
		logger.WithError(err).Error("user operation failed")
	}
	return mapped
}

func errorsIsUserMissing(err error) bool {
	return errors.Is(err, user.ErrNotFound)
}

func errorsIsAccountMissing(err error) bool {
	return errors.Is(err, identity.ErrAccountNotFound)
}
