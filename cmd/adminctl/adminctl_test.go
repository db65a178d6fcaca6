package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/modules/core/domain/aggregates/user"
	"github.com/iota-uz/iota-admin/modules/hrm/domain/aggregates/department"
	"github.com/iota-uz/iota-admin/pkg/hierarchy"
)

func TestRenderForest(t *testing.T) {
	t.Parallel()

	eng := department.Department{ID: uuid.New(), Name: "Engineering"}
	backend := department.Department{ID: uuid.New(), Name: "Backend", ParentID: &eng.ID}
	sales := department.Department{ID: uuid.New(), Name: "Sales"}
	forest := hierarchy.BuildForest([]department.Department{eng, backend, sales},
		func(d department.Department) uuid.UUID { return d.ID },
		func(d department.Department) *uuid.UUID { return d.ParentID },
	)

	var buf bytes.Buffer
	require.NoError(t, renderForest(&buf, forest, func(n *hierarchy.Node[department.Department]) string {
		return n.Item.Name
	}))
	require.Equal(t, "Engineering\n  Backend\nSales\n", buf.String())
}

func TestReportCycles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	departments := []department.Department{
		{ID: a, Name: "A", ParentID: &b},
		{ID: b, Name: "B", ParentID: &a},
		{ID: c, Name: "C", ParentID: &a},
	}
	boss := user.User{ID: uuid.New(), Email: "boss@example.com"}
	report := user.User{ID: uuid.New(), Email: "report@example.com", ManagerID: &boss.ID}

	var buf bytes.Buffer
	found, err := reportCycles(ctx, &buf, departments, []user.User{boss, report})
	require.NoError(t, err)
	// C hangs below the loop, so its ancestry never reaches a root either.
	require.Equal(t, 3, found)
	require.Contains(t, buf.String(), `"A": parent chain loops`)
	require.NotContains(t, buf.String(), "manager chain loops")

	buf.Reset()
	found, err = reportCycles(ctx, &buf, departments[2:], []user.User{boss, report})
	require.NoError(t, err)
	require.Zero(t, found)
	require.Equal(t, "no cycles in 1 departments and 2 users\n", buf.String())
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, exitOK, exitCode(nil))
	require.Equal(t, exitFound, exitCode(errors.New("boom")))
	require.Equal(t, exitDB, exitCode(withCode(exitDB, errors.New("down"))))
}

func TestRootCmd_UnknownFlagIsUsageError(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"tree", "departments", "--depth", "2"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Equal(t, exitUsage, exitCode(cmd.Execute()))
}
