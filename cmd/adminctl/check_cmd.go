package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/hierarchy"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Consistency checks over stored data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cycles",
		Short: "Report departments and users whose ancestry loops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, closeFn, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			departments, err := rt.departments.All(rt.ctx)
			if err != nil {
				return withCode(exitDB, err)
			}
			users, err := rt.users.All(rt.ctx)
			if err != nil {
				return withCode(exitDB, err)
			}
			found, err := reportCycles(rt.ctx, cmd.OutOrStdout(), departments, users)
			if err != nil {
				return err
			}
			if found > 0 {
				return withCode(exitFound, fmt.Errorf("%d nodes sit on a loop", found))
			}
			return nil
		},
	})
	return cmd
}

// reportCycles prints every looping node and returns how many there were.
func reportCycles(ctx context.Context, w io.Writer, departments []department.Department, users []user.User) (int, error) {
	deptLoops, err := loops(ctx, departments,
		func(d department.Department) uuid.UUID { return d.ID },
		func(d department.Department) *uuid.UUID { return d.ParentID },
	)
	if err != nil {
		return 0, err
	}
	userLoops, err := loops(ctx, users,
		func(u user.User) uuid.UUID { return u.ID },
		func(u user.User) *uuid.UUID { return u.ManagerID },
	)
	if err != nil {
		return 0, err
	}

	for _, d := range deptLoops {
		fmt.Fprintf(w, "department %s %q: parent chain loops\n", d.ID, d.Name)
	}
	for _, u := range userLoops {
		fmt.Fprintf(w, "user %s %q: manager chain loops\n", u.ID, u.Email)
	}
	total := len(deptLoops) + len(userLoops)
	if total == 0 {
		fmt.Fprintf(w, "no cycles in %d departments and %d users\n", len(departments), len(users))
	}
	return total, nil
}

func loops[T any](ctx context.Context, items []T, id func(T) uuid.UUID, parent func(T) *uuid.UUID) ([]T, error) {
	ids := make([]uuid.UUID, len(items))
	parents := make(map[uuid.UUID]*uuid.UUID, len(items))
	byID := make(map[uuid.UUID]T, len(items))
	for i, item := range items {
		ids[i] = id(item)
		parents[ids[i]] = parent(item)
		byID[ids[i]] = item
	}
	looping, err := hierarchy.FindLoops(ctx, ids, parents)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(looping))
	for _, k := range looping {
		out = append(out, byID[k])
	}
	return out, nil
}
