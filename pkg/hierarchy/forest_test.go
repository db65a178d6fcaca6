package hierarchy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-admin/pkg/hierarchy"
)

type flatNode struct {
	ID     int
	Parent *int
	Users  int
}

func buildFlat(nodes []flatNode) []*hierarchy.Node[flatNode] {
	return hierarchy.BuildForest(
		nodes,
		func(n flatNode) int { return n.ID },
		func(n flatNode) *int { return n.Parent },
		hierarchy.WithCount(func(n flatNode) int { return n.Users }),
	)
}

func ids(nodes []*hierarchy.Node[flatNode]) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Item.ID)
	}
	return out
}

func TestBuildForest_DanglingParentBecomesRoot(t *testing.T) {
	t.Parallel()

	roots := buildFlat([]flatNode{
		{ID: 1},
		{ID: 2, Parent: ptr(1)},
		{ID: 3, Parent: ptr(99)},
	})

	require.Equal(t, []int{1, 3}, ids(roots))
	require.Equal(t, []int{2}, ids(roots[0].Children))
	require.Empty(t, roots[1].Children)
}

func TestBuildForest_KeepsInputOrderAndTotals(t *testing.T) {
	t.Parallel()

	roots := buildFlat([]flatNode{
		{ID: 3, Parent: ptr(1), Users: 4},
		{ID: 1, Users: 1},
		{ID: 2, Parent: ptr(1), Users: 2},
		{ID: 4, Parent: ptr(2), Users: 3},
		{ID: 5},
	})

	require.Equal(t, []int{1, 5}, ids(roots))
	require.Equal(t, []int{3, 2}, ids(roots[0].Children))
	require.Equal(t, 1, roots[0].Count)
	require.Equal(t, 10, roots[0].Total)
	require.Equal(t, 5, roots[0].Children[1].Total)
	require.Zero(t, roots[1].Total)
}

func TestBuildForest_BreaksLoops(t *testing.T) {
	t.Parallel()

	roots := buildFlat([]flatNode{
		{ID: 1},
		{ID: 2, Parent: ptr(3), Users: 1},
		{ID: 3, Parent: ptr(2), Users: 1},
		{ID: 4, Parent: ptr(4)},
	})

	require.Equal(t, []int{1, 4, 2}, ids(roots))
	require.Equal(t, []int{3}, ids(roots[2].Children))
	require.Equal(t, 2, roots[2].Total)

	seen := 0
	hierarchy.Walk(roots, func(*hierarchy.Node[flatNode], int) { seen++ })
	require.Equal(t, 4, seen)
}

func TestBuildForest_Empty(t *testing.T) {
	t.Parallel()
	require.Empty(t, buildFlat(nil))
}

func TestWalk_Depth(t *testing.T) {
	t.Parallel()

	roots := buildFlat([]flatNode{{ID: 1}, {ID: 2, Parent: ptr(1)}, {ID: 3, Parent: ptr(2)}})
	depths := map[int]int{}
	hierarchy.Walk(roots, func(n *hierarchy.Node[flatNode], depth int) {
		depths[n.Item.ID] = depth
	})
	require.Equal(t, map[int]int{1: 0, 2: 1, 3: 2}, depths)
}
