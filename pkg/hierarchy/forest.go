package hierarchy

// Node is one entry of an assembled forest. Count is the node's own
// aggregate, Total adds the Totals of all descendants.
type Node[T any] struct {
	Item     T          `json:"node"`
	Children []*Node[T] `json:"children"`
	Count    int        `json:"count"`
	Total    int        `json:"total"`
}

type forestConfig[T any] struct {
	count func(T) int
}

type ForestOption[T any] func(*forestConfig[T])

// WithCount sets the per-node aggregate.
func WithCount[T any](count func(T) int) ForestOption[T] {
	return func(c *forestConfig[T]) {
		c.count = count
	}
}

// BuildForest links a flat list of items into trees. Items whose parent is
// nil or unknown become roots. Children and roots keep input order. Loops in
// the input are broken at the first listed member, which becomes a root, so
// every item appears exactly once.
func BuildForest[K comparable, T any](items []T, id func(T) K, parent func(T) *K, opts ...ForestOption[T]) []*Node[T] {
	cfg := forestConfig[T]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	nodes := make([]*Node[T], len(items))
	index := make(map[K]int, len(items))
	for i, item := range items {
		n := &Node[T]{Item: item, Children: []*Node[T]{}}
		if cfg.count != nil {
			n.Count = cfg.count(item)
		}
		nodes[i] = n
		if _, dup := index[id(item)]; !dup {
			index[id(item)] = i
		}
	}

	parentOf := make([]int, len(items))
	var roots []*Node[T]
	for i, item := range items {
		parentOf[i] = -1
		p := parent(item)
		if p == nil {
			roots = append(roots, nodes[i])
			continue
		}
		pi, ok := index[*p]
		if !ok || pi == i {
			roots = append(roots, nodes[i])
			continue
		}
		parentOf[i] = pi
		nodes[pi].Children = append(nodes[pi].Children, nodes[i])
	}

	reached := make(map[*Node[T]]bool, len(nodes))
	for _, r := range roots {
		mark(r, reached)
	}
	for i, n := range nodes {
		if reached[n] {
			continue
		}
		detach(nodes[parentOf[i]], n)
		roots = append(roots, n)
		mark(n, reached)
	}

	for _, r := range roots {
		total(r)
	}
	if roots == nil {
		roots = []*Node[T]{}
	}
	return roots
}

func mark[T any](n *Node[T], reached map[*Node[T]]bool) {
	if reached[n] {
		return
	}
	reached[n] = true
	for _, c := range n.Children {
		mark(c, reached)
	}
}

func detach[T any](parent, child *Node[T]) {
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}

func total[T any](n *Node[T]) int {
	n.Total = n.Count
	for _, c := range n.Children {
		n.Total += total(c)
	}
	return n.Total
}

// Walk visits nodes depth first, passing each node's depth.
func Walk[T any](roots []*Node[T], fn func(n *Node[T], depth int)) {
	var visit func(n *Node[T], depth int)
	visit = func(n *Node[T], depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
}
