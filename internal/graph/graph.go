// Package graph provides the index-based multigraph and hypergraph arenas
// the construction algorithms build once per trial.
//
// Nodes are integers in [0, NumNodes()). Every index access is bounds
// checked. Mutators return an error wrapping ErrInvalidIndex for a bad
// index; read accessors (Degree, Adjacency, Incident) panic with the same
// error, since a bad read index is a defect in the caller.
package graph

import (
	"fmt"

	pherrors "github.com/tamirms/perfecthash/errors"
)

// Adj is one adjacency entry: the neighbor and the payload of the edge.
type Adj struct {
	Node  int
	Value uint64
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", pherrors.ErrInvalidIndex, i, n)
	}
	return nil
}

func mustIndex(i, n int) {
	if err := checkIndex(i, n); err != nil {
		panic(err)
	}
}

// Multigraph is a 2-uniform multigraph with a payload per edge. Parallel
// edges and self-loops are stored as given.
type Multigraph struct {
	adj [][]Adj
}

// NewMultigraph returns an empty multigraph on n nodes.
func NewMultigraph(n int) *Multigraph {
	return &Multigraph{adj: make([][]Adj, n)}
}

// NumNodes returns the node count.
func (g *Multigraph) NumNodes() int { return len(g.adj) }

// Clear removes all edges, keeping allocated adjacency storage.
func (g *Multigraph) Clear() {
	for i := range g.adj {
		g.adj[i] = g.adj[i][:0]
	}
}

// AddEdge adds an edge between i and j carrying v.
func (g *Multigraph) AddEdge(i, j int, v uint64) error {
	if err := checkIndex(i, len(g.adj)); err != nil {
		return err
	}
	if err := checkIndex(j, len(g.adj)); err != nil {
		return err
	}
	g.adj[i] = append(g.adj[i], Adj{Node: j, Value: v})
	g.adj[j] = append(g.adj[j], Adj{Node: i, Value: v})
	return nil
}

// Degree returns the number of edge endpoints at i.
func (g *Multigraph) Degree(i int) int {
	mustIndex(i, len(g.adj))
	return len(g.adj[i])
}

// Adjacency returns the neighbors of i in insertion order. The slice is
// owned by the graph and valid until the next mutation.
func (g *Multigraph) Adjacency(i int) []Adj {
	mustIndex(i, len(g.adj))
	return g.adj[i]
}

// Simple is a 2-uniform graph without parallel edges or self-loops.
type Simple struct {
	adj [][]Adj
	// present holds both orientations of every edge.
	present map[uint64]struct{}
}

// NewSimple returns an empty simple graph on n nodes.
func NewSimple(n int) *Simple {
	return &Simple{adj: make([][]Adj, n), present: make(map[uint64]struct{})}
}

func arc(i, j int) uint64 {
	return uint64(uint32(i))<<32 | uint64(uint32(j))
}

// NumNodes returns the node count.
func (g *Simple) NumNodes() int { return len(g.adj) }

// Clear removes all edges.
func (g *Simple) Clear() {
	for i := range g.adj {
		g.adj[i] = g.adj[i][:0]
	}
	clear(g.present)
}

// AddEdge adds an edge between i and j carrying v unless one already
// exists in either direction. It reports whether the edge was added; a
// false result leaves the graph unchanged.
//
// Self-loops and endpoints that disagree about an existing edge are
// internal errors.
func (g *Simple) AddEdge(i, j int, v uint64) (bool, error) {
	if err := checkIndex(i, len(g.adj)); err != nil {
		return false, err
	}
	if err := checkIndex(j, len(g.adj)); err != nil {
		return false, err
	}
	if i == j {
		return false, fmt.Errorf("%w: self-loop at node %d", pherrors.ErrInternal, i)
	}
	_, hasIJ := g.present[arc(i, j)]
	_, hasJI := g.present[arc(j, i)]
	if hasIJ != hasJI {
		return false, fmt.Errorf("%w: edge %d-%d known to one endpoint only", pherrors.ErrInternal, i, j)
	}
	if hasIJ {
		return false, nil
	}
	g.present[arc(i, j)] = struct{}{}
	g.present[arc(j, i)] = struct{}{}
	g.adj[i] = append(g.adj[i], Adj{Node: j, Value: v})
	g.adj[j] = append(g.adj[j], Adj{Node: i, Value: v})
	return true, nil
}

// HasEdge reports whether i and j are adjacent.
func (g *Simple) HasEdge(i, j int) bool {
	_, ok := g.present[arc(i, j)]
	return ok
}

// Degree returns the number of neighbors of i.
func (g *Simple) Degree(i int) int {
	mustIndex(i, len(g.adj))
	return len(g.adj[i])
}

// Adjacency returns the neighbors of i in insertion order.
func (g *Simple) Adjacency(i int) []Adj {
	mustIndex(i, len(g.adj))
	return g.adj[i]
}
