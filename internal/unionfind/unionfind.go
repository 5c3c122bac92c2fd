// Package unionfind implements incremental connectivity with union by size
// and path compression. The construction algorithms use it to reject
// trials as soon as an edge closes a cycle.
package unionfind

import (
	"fmt"

	pherrors "github.com/tamirms/perfecthash/errors"
)

type node struct {
	size   int // size of the tree rooted here
	parent int // roots are their own parent
}

// UnionFind tracks connected components over n nodes.
type UnionFind struct {
	nodes []node
}

// New returns n singleton components.
func New(n int) *UnionFind {
	uf := &UnionFind{nodes: make([]node, n)}
	uf.Clear()
	return uf
}

// Len returns the node count.
func (uf *UnionFind) Len() int { return len(uf.nodes) }

// Clear resets every node to a singleton component.
func (uf *UnionFind) Clear() {
	for i := range uf.nodes {
		uf.nodes[i] = node{size: 1, parent: i}
	}
}

func (uf *UnionFind) check(i int) {
	if i < 0 || i >= len(uf.nodes) {
		panic(fmt.Errorf("%w: %d not in [0, %d)", pherrors.ErrInvalidIndex, i, len(uf.nodes)))
	}
}

// FindIdentity returns the root of i's component, compressing the path
// from i to the root.
func (uf *UnionFind) FindIdentity(i int) int {
	uf.check(i)
	r := i
	for uf.nodes[r].parent != r {
		r = uf.nodes[r].parent
	}
	for uf.nodes[i].parent != r {
		p := uf.nodes[i].parent
		uf.nodes[i].parent = r
		i = p
	}
	return r
}

// Size returns the number of nodes in i's component.
func (uf *UnionFind) Size(i int) int {
	return uf.nodes[uf.FindIdentity(i)].size
}

// DoUnion merges the components of i and j. It returns true, and changes
// nothing, if they are already connected: adding edge i-j would close a
// cycle (or a loop, or a parallel edge).
func (uf *UnionFind) DoUnion(i, j int) bool {
	ri, rj := uf.FindIdentity(i), uf.FindIdentity(j)
	if ri == rj {
		return true
	}
	uf.link(ri, rj)
	return false
}

// link attaches the smaller root under the larger one and returns the
// surviving root.
func (uf *UnionFind) link(ri, rj int) int {
	ni, nj := &uf.nodes[ri], &uf.nodes[rj]
	if ni.size >= nj.size {
		ni.size += nj.size
		nj.parent = ri
		return ri
	}
	nj.size += ni.size
	ni.parent = rj
	return rj
}

// Aggregate is a UnionFind that also keeps a running total per component.
// Totals are summed when components merge.
type Aggregate struct {
	UnionFind
	values []int64
}

// NewAggregate returns n singleton components with zero totals.
func NewAggregate(n int) *Aggregate {
	return &Aggregate{UnionFind: *New(n), values: make([]int64, n)}
}

// Clear resets components and totals.
func (a *Aggregate) Clear() {
	a.UnionFind.Clear()
	clear(a.values)
}

// Value returns the total of i's component.
func (a *Aggregate) Value(i int) int64 {
	return a.values[a.FindIdentity(i)]
}

// AdjustValue adds add and subtracts sub from the total of i's component
// and returns the new total.
func (a *Aggregate) AdjustValue(i int, add, sub int64) int64 {
	r := a.FindIdentity(i)
	a.values[r] += add - sub
	return a.values[r]
}

// DoUnion merges the components of i and j like UnionFind.DoUnion; the
// surviving root carries the sum of both totals.
func (a *Aggregate) DoUnion(i, j int) bool {
	ri, rj := a.FindIdentity(i), a.FindIdentity(j)
	if ri == rj {
		return true
	}
	total := a.values[ri] + a.values[rj]
	a.values[a.link(ri, rj)] = total
	return false
}
