// Package taxonomy implements the hierarchical classification engine shared
// by categories and locations: forest construction, ancestor paths, slug
// generation, re-parent cycle prevention, and the fixed location type ladder.
//
// All functions are pure over flat row slices; callers pass rows already
// filtered (soft-deleted excluded) and ordered by their display key.
package taxonomy

import (
	"errors"
	"fmt"
)

// ErrCycleDetected reports preexisting parent-link corruption. It is a
// data-integrity condition; callers treat it as fatal, not a user error.
var ErrCycleDetected = errors.New("taxonomy: parent cycle detected")

const (
	// MaxLocationDepth is the length of the location type ladder.
	MaxLocationDepth = 7
	// MaxCategoryDepth bounds category path walks. Category nesting is
	// unbounded by the data model but walks must still terminate.
	MaxCategoryDepth = 32
)

// TreeItem is the row shape the tree functions operate on.
type TreeItem interface {
	TreeID() int64
	TreeParentID() *int64
}

// Node is one vertex of a built forest. Children keep the input ordering.
type Node[T TreeItem] struct {
	Item     T          `json:"item"`
	Children []*Node[T] `json:"children"`
}

// BuildTree groups rows under their parents and returns the roots
// (parent nil, or parent missing from the row set). Rows are indexed by
// parent first, so construction is O(n) over the input.
func BuildTree[T TreeItem](items []T) []*Node[T] {
	nodes := make(map[int64]*Node[T], len(items))
	for _, item := range items {
		nodes[item.TreeID()] = &Node[T]{Item: item, Children: []*Node[T]{}}
	}

	roots := make([]*Node[T], 0)
	for _, item := range items {
		node := nodes[item.TreeID()]
		parentID := item.TreeParentID()
		if parentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*parentID]
		if !ok {
			// Parent filtered out (inactive or deleted): orphan
			// subtrees surface as roots rather than vanish.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}

// IndexByID builds the lookup map PathTo and WouldCreateCycle consume.
func IndexByID[T TreeItem](items []T) map[int64]T {
	byID := make(map[int64]T, len(items))
	for _, item := range items {
		byID[item.TreeID()] = item
	}
	return byID
}

// PathTo walks parent links from id up to a root and returns the chain in
// root→target order. The walk is bounded by maxDepth; exceeding it, or
// revisiting a node, returns ErrCycleDetected instead of looping.
func PathTo[T TreeItem](byID map[int64]T, id int64, maxDepth int) ([]T, error) {
	path := make([]T, 0, maxDepth)
	seen := make(map[int64]bool, maxDepth)

	current, ok := byID[id]
	for ok {
		if len(path) >= maxDepth || seen[current.TreeID()] {
			return nil, fmt.Errorf("%w: node %d", ErrCycleDetected, id)
		}
		seen[current.TreeID()] = true
		path = append([]T{current}, path...)

		parentID := current.TreeParentID()
		if parentID == nil {
			break
		}
		current, ok = byID[*parentID]
	}

	return path, nil
}

// WouldCreateCycle reports whether re-parenting nodeID under newParentID
// would make the node its own ancestor. A node can never be its own parent,
// and the proposed parent's root path must not contain the node.
func WouldCreateCycle[T TreeItem](byID map[int64]T, nodeID, newParentID int64, maxDepth int) (bool, error) {
	if nodeID == newParentID {
		return true, nil
	}

	path, err := PathTo(byID, newParentID, maxDepth)
	if err != nil {
		return false, err
	}
	for _, ancestor := range path {
		if ancestor.TreeID() == nodeID {
			return true, nil
		}
	}

	return false, nil
}
