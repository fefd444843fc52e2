// Package region builds a nesting tree over a method's exception-handling
// table, so the importer and Forest analysis can ask "are these two
// bytecode offsets protected by the same set of regions" without
// re-scanning the raw table on every query.
package region

import (
	"sort"

	"ilcore/internal/cil"
)

// NodeID identifies one node in a Tree. The synthetic root (covering the
// whole method, protected by nothing) is always NodeID(0).
type NodeID uint32

const RootID NodeID = 0

// Node is one protected region, with its try/handler extents and a link
// to the region it is nested inside (RootID if it is outermost).
type Node struct {
	ID       NodeID
	Region   cil.ExceptionRegion
	Parent   NodeID
	Children []NodeID
	Depth    uint32
}

// Tree is the region nesting structure for one method body.
type Tree struct {
	nodes []Node
}

// Build constructs a Tree from the method's raw exception-handling table.
// Nesting is determined by try-range containment: a region A nests inside
// B when B's try range strictly contains A's try range. Regions with
// identical try ranges (e.g. a try guarded by both a filter and a
// finally) are ordered by increasing HandlerStart, matching the order the
// metadata reader lists them in.
func Build(regions []cil.ExceptionRegion) *Tree {
	t := &Tree{nodes: []Node{{ID: RootID, Parent: RootID, Depth: 0}}}

	ordered := make([]cil.ExceptionRegion, len(regions))
	copy(ordered, regions)
	sort.SliceStable(ordered, func(i, j int) bool {
		leni := ordered[i].TryEnd - ordered[i].TryStart
		lenj := ordered[j].TryEnd - ordered[j].TryStart
		if leni != lenj {
			return leni > lenj // widest first, so every enclosing region already exists
		}
		return ordered[i].HandlerStart < ordered[j].HandlerStart
	})

	for _, r := range ordered {
		parent := t.findInnermostContaining(r.TryStart, r.TryEnd)
		// An identical try range is a sibling, not a parent.
		for parent != RootID && t.nodes[parent].Region.TryStart == r.TryStart && t.nodes[parent].Region.TryEnd == r.TryEnd {
			parent = t.nodes[parent].Parent
		}
		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{
			ID:     id,
			Region: r,
			Parent: parent,
			Depth:  t.nodes[parent].Depth + 1,
		})
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	return t
}

// findInnermostContaining returns the most deeply nested existing node
// whose try range contains [start, end).
func (t *Tree) findInnermostContaining(start, end uint32) NodeID {
	best := RootID
	bestSpan := ^uint32(0)
	for i := 1; i < len(t.nodes); i++ {
		n := &t.nodes[i]
		if n.Region.TryStart <= start && end <= n.Region.TryEnd {
			span := n.Region.TryEnd - n.Region.TryStart
			if span < bestSpan {
				bestSpan = span
				best = n.ID
			}
		}
	}
	return best
}

// Node returns the node for id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of regions in the tree, excluding the synthetic
// root.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// ContainingChain returns the ordered chain of region node IDs protecting
// offset, from outermost to innermost. offset must fall in a region's try
// range for that region to be included — being inside a handler does not
// count, since a handler itself may be further guarded by an enclosing
// region but is not "inside its own try".
func (t *Tree) ContainingChain(offset uint32) []NodeID {
	var chain []NodeID
	cur := t.findInnermostContaining(offset, offset+1)
	for cur != RootID {
		chain = append([]NodeID{cur}, chain...)
		cur = t.nodes[cur].Parent
	}
	return chain
}

// AreOnSameRegion reports whether offsetA and offsetB are protected by
// exactly the same chain of regions — the guard-stack equality test the
// Forest hazard check and the importer's leader-splitting logic both need.
func (t *Tree) AreOnSameRegion(offsetA, offsetB uint32) bool {
	a := t.ContainingChain(offsetA)
	b := t.ContainingChain(offsetB)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
