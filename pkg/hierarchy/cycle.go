// Package hierarchy holds the algorithms shared by every parent-linked
// structure: the write-time cycle check and the read-time forest assembly.
package hierarchy

import (
	"context"
)

// ParentLookup returns the parent of id. found is false when id does not exist.
type ParentLookup[K comparable] func(ctx context.Context, id K) (parent *K, found bool, err error)

// WouldCreateCycle reports whether making proposedParent the parent of
// candidate would close a loop. The walk goes upward from proposedParent and
// stops at a root, at a missing node, or at the first revisited id.
func WouldCreateCycle[K comparable](ctx context.Context, lookup ParentLookup[K], candidate, proposedParent K) (bool, error) {
	if candidate == proposedParent {
		return true, nil
	}
	visited := map[K]struct{}{candidate: {}}
	current := proposedParent
	for {
		if _, seen := visited[current]; seen {
			return true, nil
		}
		visited[current] = struct{}{}

		if err := ctx.Err(); err != nil {
			return false, err
		}
		parent, found, err := lookup(ctx, current)
		if err != nil {
			return false, err
		}
		if !found || parent == nil {
			return false, nil
		}
		current = *parent
	}
}

// Detector binds a lookup so callers only pass ids.
type Detector[K comparable] struct {
	lookup ParentLookup[K]
}

func NewDetector[K comparable](lookup ParentLookup[K]) *Detector[K] {
	return &Detector[K]{lookup: lookup}
}

func (d *Detector[K]) WouldCreateCycle(ctx context.Context, candidate, proposedParent K) (bool, error) {
	return WouldCreateCycle(ctx, d.lookup, candidate, proposedParent)
}

// MapLookup serves lookups from an in-memory id -> parent snapshot.
func MapLookup[K comparable](parents map[K]*K) ParentLookup[K] {
	return func(_ context.Context, id K) (*K, bool, error) {
		parent, ok := parents[id]
		return parent, ok, nil
	}
}

// FindLoops returns, in the order of ids, every node whose ancestry does not
// end at a root.
func FindLoops[K comparable](ctx context.Context, ids []K, parents map[K]*K) ([]K, error) {
	lookup := MapLookup(parents)
	var loops []K
	for _, id := range ids {
		parent := parents[id]
		if parent == nil {
			continue
		}
		cyclic, err := WouldCreateCycle(ctx, lookup, id, *parent)
		if err != nil {
			return nil, err
		}
		if cyclic {
			loops = append(loops, id)
		}
	}
	return loops, nil
}
