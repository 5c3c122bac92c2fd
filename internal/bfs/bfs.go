// Package bfs builds breadth-first spanning forests over a 2-uniform graph
// and reports every edge to a caller-supplied Visitor. The construction
// algorithms use it both to check acyclicity and to propagate node values
// from a root to the rest of its tree.
package bfs

import "github.com/tamirms/perfecthash/internal/graph"

// Graph is the read-only view the walker needs.
type Graph interface {
	NumNodes() int
	Adjacency(i int) []graph.Adj
}

// Visitor receives traversal events.
type Visitor interface {
	// Root reports whether node may start a new tree. A rejected node is
	// left unvisited and can still be reached later from another root.
	Root(node int) bool
	// NormalEdge is called for an edge from a visited parent to an
	// unvisited child. Returning false leaves child unvisited and does not
	// expand it.
	NormalEdge(parent, child int, value uint64) bool
	// CycleEdge is called for a non-parent edge to an already visited node.
	// A non-nil error stops the walk.
	CycleEdge(parent, child int, value uint64) error
}

type queueItem struct {
	node   int
	parent int
}

// Walker holds the visited set and queue. Visited state persists across
// Walk calls until Reset, so a traversal can be split into phases.
type Walker struct {
	done  []bool
	queue []queueItem
}

// NewWalker returns a walker for graphs with n nodes.
func NewWalker(n int) *Walker {
	return &Walker{done: make([]bool, n)}
}

// Reset marks every node unvisited and resizes for n nodes.
func (w *Walker) Reset(n int) {
	if cap(w.done) < n {
		w.done = make([]bool, n)
		return
	}
	w.done = w.done[:n]
	clear(w.done)
}

// Visited reports whether node has been visited since the last Reset.
func (w *Walker) Visited(node int) bool {
	return w.done[node]
}

// VisitAll resets the walker and offers every node, in index order, as a
// root.
func (w *Walker) VisitAll(g Graph, v Visitor) error {
	w.Reset(g.NumNodes())
	return w.Continue(g, v)
}

// Continue offers every still unvisited node as a root without resetting.
func (w *Walker) Continue(g Graph, v Visitor) error {
	for i := range g.NumNodes() {
		if err := w.Walk(g, i, v); err != nil {
			return err
		}
	}
	return nil
}

// Walk grows one tree from root if root is unvisited and accepted.
func (w *Walker) Walk(g Graph, root int, v Visitor) error {
	if w.done[root] || !v.Root(root) {
		return nil
	}
	w.done[root] = true
	// The root's parent is the out-of-range node count.
	w.queue = append(w.queue[:0], queueItem{node: root, parent: g.NumNodes()})
	for head := 0; head < len(w.queue); head++ {
		s, p := w.queue[head].node, w.queue[head].parent
		for _, a := range g.Adjacency(s) {
			if a.Node == p {
				continue
			}
			if w.done[a.Node] {
				if err := v.CycleEdge(s, a.Node, a.Value); err != nil {
					return err
				}
				continue
			}
			if v.NormalEdge(s, a.Node, a.Value) {
				w.done[a.Node] = true
				w.queue = append(w.queue, queueItem{node: a.Node, parent: s})
			}
		}
	}
	return nil
}
