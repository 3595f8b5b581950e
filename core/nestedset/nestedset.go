// Package nestedset holds the tree math shared by the template catalog and
// the per-project task trees. Nodes carry left/right interval bounds so that
// descendant and ancestor checks reduce to integer comparisons.
package nestedset

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrCycleDetected is returned by Depth when a parent chain loops back on
// itself. The tree invariants forbid this; a cycle means corrupted data.
var ErrCycleDetected = errors.New("cycle detected in parent chain")

// Node is the shape both template and task nodes satisfy.
type Node interface {
	NodeID() string
	NodeParentID() string // empty for roots
	NodeBounds() (left, right int)
}

// ByID indexes nodes by id.
func ByID(nodes []Node) map[string]Node {
	m := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		m[n.NodeID()] = n
	}
	return m
}

// parentIDSet collects the ids that appear as some node's parent.
func parentIDSet(nodes []Node) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if pid := n.NodeParentID(); pid != "" {
			set[pid] = true
		}
	}
	return set
}

// Depth returns the number of ancestor hops from n to its root, walking
// parent pointers. A broken parent chain stops at the last known ancestor;
// a looping one returns ErrCycleDetected.
func Depth(n Node, byID map[string]Node) (int, error) {
	depth := 0
	seen := map[string]bool{n.NodeID(): true}
	for pid := n.NodeParentID(); pid != ""; {
		if seen[pid] {
			return 0, errors.Wrapf(ErrCycleDetected, "at node %s", pid)
		}
		seen[pid] = true
		parent, ok := byID[pid]
		if !ok {
			break
		}
		depth++
		pid = parent.NodeParentID()
	}
	return depth, nil
}

// IsLeaf reports whether no other node references n as its parent.
func IsLeaf(n Node, nodes []Node) bool {
	return !parentIDSet(nodes)[n.NodeID()]
}

// Leaves returns the nodes that no other node references as parent,
// in left-bound order.
func Leaves(nodes []Node) []Node {
	parents := parentIDSet(nodes)
	leaves := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !parents[n.NodeID()] {
			leaves = append(leaves, n)
		}
	}
	sortByLeft(leaves)
	return leaves
}

// Descendants returns the nodes whose bounds lie strictly within n's bounds,
// in left-bound order.
func Descendants(n Node, nodes []Node) []Node {
	left, right := n.NodeBounds()
	desc := make([]Node, 0)
	for _, d := range nodes {
		dl, dr := d.NodeBounds()
		if left < dl && dr < right {
			desc = append(desc, d)
		}
	}
	sortByLeft(desc)
	return desc
}

// LeafNumbers assigns each leaf its 1-based display number, counted
// independently per immediate parent, in left-bound traversal order.
// Non-leaf nodes get no number.
func LeafNumbers(nodes []Node) map[string]int {
	parents := parentIDSet(nodes)

	ordered := make([]Node, len(nodes))
	copy(ordered, nodes)
	sortByLeft(ordered)

	numbers := make(map[string]int)
	counters := make(map[string]int)
	for _, n := range ordered {
		if parents[n.NodeID()] {
			continue
		}
		pid := n.NodeParentID()
		counters[pid]++
		numbers[n.NodeID()] = counters[pid]
	}
	return numbers
}

// NextBounds returns the append-at-end bounds for a new trailing node:
// (maxRight+1, maxRight+2), or (1, 2) on an empty tree.
func NextBounds(nodes []Node) (left, right int) {
	maxRight := 0
	for _, n := range nodes {
		if _, r := n.NodeBounds(); r > maxRight {
			maxRight = r
		}
	}
	return maxRight + 1, maxRight + 2
}

// ChildSlot returns the bounds a new last child of parent will occupy once
// every bound >= parent's right bound has been shifted by +2.
func ChildSlot(parent Node) (left, right int) {
	_, r := parent.NodeBounds()
	return r, r + 1
}

// SubtreeWidth is the size of the bound interval a node's subtree occupies.
func SubtreeWidth(n Node) int {
	l, r := n.NodeBounds()
	return r - l + 1
}

// Violation describes a broken tree invariant found by Validate. Violations
// are reported, not raised: the system tolerates imperfect states.
type Violation struct {
	NodeID  string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("node %s: %s", v.NodeID, v.Message)
}

// Validate checks the nested-set invariants over the whole tree:
// right > left for every node, children strictly inside their parent,
// ordered non-overlapping siblings, and leaf nodes spanning exactly
// (left, left+1).
func Validate(nodes []Node) []Violation {
	var violations []Violation
	byID := ByID(nodes)
	parents := parentIDSet(nodes)

	children := make(map[string][]Node)
	for _, n := range nodes {
		children[n.NodeParentID()] = append(children[n.NodeParentID()], n)
	}

	for _, n := range nodes {
		l, r := n.NodeBounds()
		if r <= l {
			violations = append(violations, Violation{n.NodeID(), fmt.Sprintf("right bound %d not greater than left bound %d", r, l)})
		}
		if !parents[n.NodeID()] && r != l+1 {
			violations = append(violations, Violation{n.NodeID(), fmt.Sprintf("leaf bounds (%d, %d) must span exactly 2", l, r)})
		}
		if pid := n.NodeParentID(); pid != "" {
			if p, ok := byID[pid]; ok {
				pl, pr := p.NodeBounds()
				if !(pl < l && r < pr) {
					violations = append(violations, Violation{n.NodeID(), fmt.Sprintf("bounds (%d, %d) not strictly inside parent bounds (%d, %d)", l, r, pl, pr)})
				}
			} else {
				violations = append(violations, Violation{n.NodeID(), fmt.Sprintf("parent %s not found", pid)})
			}
		}
	}

	for _, siblings := range children {
		sortByLeft(siblings)
		for i := 1; i < len(siblings); i++ {
			_, prevRight := siblings[i-1].NodeBounds()
			left, _ := siblings[i].NodeBounds()
			if left <= prevRight {
				violations = append(violations, Violation{siblings[i].NodeID(), fmt.Sprintf("bounds overlap sibling %s", siblings[i-1].NodeID())})
			}
		}
	}

	return violations
}

func sortByLeft(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		li, _ := nodes[i].NodeBounds()
		lj, _ := nodes[j].NodeBounds()
		return li < lj
	})
}
