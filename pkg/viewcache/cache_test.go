package viewcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/eventbus"
	"github.com/iota-uz/iota-admin/pkg/viewcache"
)

func TestMemory_InvalidatePathOnlyDropsThatPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := viewcache.NewMemory(time.Minute)

	require.NoError(t, c.Set(ctx, viewcache.PathDepartments, "hierarchy", []byte(`[1]`)))
	require.NoError(t, c.Set(ctx, viewcache.PathUsers, "hierarchy", []byte(`[2]`)))

	require.NoError(t, c.InvalidatePath(ctx, viewcache.PathDepartments))

	_, ok, err := c.Get(ctx, viewcache.PathDepartments, "hierarchy")
	require.NoError(t, err)
	require.False(t, ok)

	raw, ok, err := c.Get(ctx, viewcache.PathUsers, "hierarchy")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`[2]`), raw)
}

func TestLoad_ComputesOnceUntilInvalidated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := viewcache.NewMemory(time.Minute)
	bus := eventbus.NewEventPublisher(logrus.New())
	viewcache.Subscribe(bus, c, logrus.New())

	calls := 0
	compute := func(context.Context) ([]string, error) {
		calls++
		return []string{"Engineering"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := viewcache.Load(ctx, c, viewcache.PathDepartments, "hierarchy", compute)
		require.NoError(t, err)
		require.Equal(t, []string{"Engineering"}, got)
	}
	require.Equal(t, 1, calls)

	viewcache.Publish(bus, viewcache.PathDepartments)
	_, err := viewcache.Load(ctx, c, viewcache.PathDepartments, "hierarchy", compute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestLoad_ComputeErrorIsNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := viewcache.NewMemory(time.Minute)
	boom := errors.New("boom")

	_, err := viewcache.Load(ctx, c, viewcache.PathUsers, "k", func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	_, ok, err := c.Get(ctx, viewcache.PathUsers, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOrganizationPath(t *testing.T) {
	t.Parallel()
	require.Equal(t, "/organizations/abc", viewcache.OrganizationPath("abc"))
}
