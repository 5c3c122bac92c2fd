package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	pherrors "github.com/tamirms/perfecthash/errors"
)

func TestMultigraphAllowsParallelsAndLoops(t *testing.T) {
	g := NewMultigraph(3)
	require.Equal(t, 3, g.NumNodes())

	require.NoError(t, g.AddEdge(0, 1, 10))
	require.NoError(t, g.AddEdge(1, 0, 11))
	require.NoError(t, g.AddEdge(2, 2, 12))

	require.Equal(t, 2, g.Degree(0))
	require.Equal(t, 2, g.Degree(1))
	require.Equal(t, 2, g.Degree(2), "a self-loop contributes two endpoints")
	require.Equal(t, []Adj{{Node: 1, Value: 10}, {Node: 1, Value: 11}}, g.Adjacency(0))

	g.Clear()
	for i := range 3 {
		require.Zero(t, g.Degree(i))
	}
}

func TestMultigraphBounds(t *testing.T) {
	g := NewMultigraph(2)
	require.ErrorIs(t, g.AddEdge(0, 2, 0), pherrors.ErrInvalidIndex)
	require.ErrorIs(t, g.AddEdge(-1, 0, 0), pherrors.ErrInvalidIndex)
	require.Zero(t, g.Degree(0), "failed AddEdge must not mutate")
	require.Panics(t, func() { g.Degree(5) })
	require.Panics(t, func() { g.Adjacency(-1) })
}

func TestSimpleRejectsDuplicates(t *testing.T) {
	g := NewSimple(4)

	added, err := g.AddEdge(0, 1, 7)
	require.NoError(t, err)
	require.True(t, added)

	added, err = g.AddEdge(1, 0, 8)
	require.NoError(t, err)
	require.False(t, added, "reverse direction is the same edge")
	require.Equal(t, []Adj{{Node: 1, Value: 7}}, g.Adjacency(0))
	require.Equal(t, 1, g.Degree(1))

	added, err = g.AddEdge(2, 1, 9)
	require.NoError(t, err)
	require.True(t, added)
	require.True(t, g.HasEdge(1, 2))
	require.False(t, g.HasEdge(0, 2))

	g.Clear()
	added, err = g.AddEdge(0, 1, 7)
	require.NoError(t, err)
	require.True(t, added, "Clear forgets previous edges")
}

func TestSimpleInvariantViolations(t *testing.T) {
	g := NewSimple(3)
	_, err := g.AddEdge(1, 1, 0)
	require.ErrorIs(t, err, pherrors.ErrInternal)

	// Corrupt one orientation to simulate disagreeing endpoints.
	g.present[arc(0, 2)] = struct{}{}
	_, err = g.AddEdge(0, 2, 0)
	require.ErrorIs(t, err, pherrors.ErrInternal)

	_, err = g.AddEdge(0, 3, 0)
	require.ErrorIs(t, err, pherrors.ErrInvalidIndex)
}

func TestHyper3RemoveRestore(t *testing.T) {
	g := NewHyper3(9, 3)
	e0, err := g.AddEdge(0, 3, 6)
	require.NoError(t, err)
	e1, err := g.AddEdge(0, 4, 7)
	require.NoError(t, err)
	e2, err := g.AddEdge(1, 4, 7)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, []int{e0, e1, e2})
	require.Equal(t, 3, g.NumEdges())
	require.Equal(t, []int{0, 4, 7}, g.Ends(e1))
	require.Equal(t, []int{e0, e1}, g.Incident(0))

	require.NoError(t, g.RemoveEdge(e1))
	require.Equal(t, 1, g.Degree(0))
	require.Equal(t, 1, g.Degree(4))
	require.Equal(t, 1, g.Degree(7))
	require.ErrorIs(t, g.RemoveEdge(e1), pherrors.ErrNotIncident, "removing twice must fail loudly")

	require.NoError(t, g.RestoreEdge(e1))
	require.Equal(t, 2, g.Degree(0))
	require.ErrorIs(t, g.RestoreEdge(e1), pherrors.ErrInternal)

	require.ErrorIs(t, g.RemoveEdge(3), pherrors.ErrInvalidIndex)
	_, err = g.AddEdge(0, 1, 9)
	require.ErrorIs(t, err, pherrors.ErrInvalidIndex)

	g.Clear()
	require.Zero(t, g.NumEdges())
	require.Zero(t, g.Degree(4))
}

// TestPlainRestoreInReverseRestoresDegrees removes every edge and then
// restores them in reverse order.
func TestPlainRestoreInReverseRestoresDegrees(t *testing.T) {
	g := NewPlain(6, 5)
	pairs := [][2]int{{0, 3}, {1, 3}, {1, 4}, {2, 5}, {2, 2}}
	for _, p := range pairs {
		_, err := g.AddEdge(p[0], p[1])
		require.NoError(t, err)
	}
	want := make([]int, g.NumNodes())
	for i := range want {
		want[i] = g.Degree(i)
	}
	require.Equal(t, []int{1, 2, 3, 2, 1, 1}, want)

	for idx := range g.NumEdges() {
		require.NoError(t, g.RemoveEdge(idx))
	}
	for i := range g.NumNodes() {
		require.Zero(t, g.Degree(i))
	}
	for idx := g.NumEdges() - 1; idx >= 0; idx-- {
		require.NoError(t, g.RestoreEdge(idx))
	}
	for i := range g.NumNodes() {
		require.Equal(t, want[i], g.Degree(i), "node %d", i)
	}
}
