package graph

import (
	"fmt"
	"slices"

	pherrors "github.com/tamirms/perfecthash/errors"
)

// uniform is a k-uniform hypergraph stored as an indexed edge list plus a
// list of incident edge indices per node.
type uniform struct {
	k       int
	inc     [][]int
	ends    []int // k node indices per edge
	removed []bool
}

func newUniform(k, n, m int) uniform {
	return uniform{
		k:       k,
		inc:     make([][]int, n),
		ends:    make([]int, 0, k*m),
		removed: make([]bool, 0, m),
	}
}

// NumNodes returns the node count.
func (u *uniform) NumNodes() int { return len(u.inc) }

// NumEdges returns the number of edges added since the last Clear,
// including removed ones.
func (u *uniform) NumEdges() int { return len(u.removed) }

// Clear removes all edges.
func (u *uniform) Clear() {
	for i := range u.inc {
		u.inc[i] = u.inc[i][:0]
	}
	u.ends = u.ends[:0]
	u.removed = u.removed[:0]
}

func (u *uniform) add(nodes ...int) (int, error) {
	for _, v := range nodes {
		if err := checkIndex(v, len(u.inc)); err != nil {
			return 0, err
		}
	}
	idx := len(u.removed)
	u.ends = append(u.ends, nodes...)
	u.removed = append(u.removed, false)
	for _, v := range nodes {
		u.inc[v] = append(u.inc[v], idx)
	}
	return idx, nil
}

// Ends returns the k nodes of edge idx. The slice is owned by the graph.
func (u *uniform) Ends(idx int) []int {
	mustIndex(idx, len(u.removed))
	return u.ends[idx*u.k : (idx+1)*u.k]
}

// RemoveEdge detaches edge idx from all of its nodes. It fails if any node
// does not list the edge as incident.
func (u *uniform) RemoveEdge(idx int) error {
	if err := checkIndex(idx, len(u.removed)); err != nil {
		return err
	}
	for _, v := range u.Ends(idx) {
		at := slices.Index(u.inc[v], idx)
		if at < 0 {
			return fmt.Errorf("%w: edge %d at node %d", pherrors.ErrNotIncident, idx, v)
		}
		u.inc[v] = slices.Delete(u.inc[v], at, at+1)
	}
	u.removed[idx] = true
	return nil
}

// RestoreEdge re-attaches a removed edge to all of its nodes.
func (u *uniform) RestoreEdge(idx int) error {
	if err := checkIndex(idx, len(u.removed)); err != nil {
		return err
	}
	if !u.removed[idx] {
		return fmt.Errorf("%w: restoring edge %d that is still attached", pherrors.ErrInternal, idx)
	}
	for _, v := range u.Ends(idx) {
		u.inc[v] = append(u.inc[v], idx)
	}
	u.removed[idx] = false
	return nil
}

// Degree returns the number of attached edge endpoints at node i.
func (u *uniform) Degree(i int) int {
	mustIndex(i, len(u.inc))
	return len(u.inc[i])
}

// Incident returns the indices of edges attached to node i.
func (u *uniform) Incident(i int) []int {
	mustIndex(i, len(u.inc))
	return u.inc[i]
}

// Plain is a 2-uniform multigraph without payload. Edges are indexed in
// insertion order and can be removed and restored, which is what peeling
// needs.
type Plain struct{ uniform }

// NewPlain returns an empty graph on n nodes with room for m edges.
func NewPlain(n, m int) *Plain {
	return &Plain{newUniform(2, n, m)}
}

// AddEdge adds an edge between a and b and returns its index.
func (g *Plain) AddEdge(a, b int) (int, error) {
	return g.add(a, b)
}

// Hyper3 is a 3-uniform hypergraph.
type Hyper3 struct{ uniform }

// NewHyper3 returns an empty hypergraph on n nodes with room for m edges.
func NewHyper3(n, m int) *Hyper3 {
	return &Hyper3{newUniform(3, n, m)}
}

// AddEdge adds the edge {a, b, c} and returns its index.
func (g *Hyper3) AddEdge(a, b, c int) (int, error) {
	return g.add(a, b, c)
}
