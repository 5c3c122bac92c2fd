package algo

import (
	"fmt"

	pherrors "github.com/tamirms/perfecthash/errors"
)

// peelable is the view of a uniform hypergraph that peeling needs.
type peelable interface {
	NumNodes() int
	NumEdges() int
	Ends(idx int) []int
	RemoveEdge(idx int) error
	Degree(i int) int
	Incident(i int) []int
}

// peel repeatedly removes an edge incident to a degree-1 node, in FIFO
// order, and returns the edges in removal order. It stops when no
// degree-1 node remains; the order is shorter than NumEdges exactly when
// the graph has a nonempty 2-core. Removed edges stay removed.
func peel(g peelable, order []int) ([]int, error) {
	order = order[:0]
	queue := make([]int, 0, g.NumNodes())
	for v := range g.NumNodes() {
		if g.Degree(v) == 1 {
			queue = append(queue, v)
		}
	}
	for head := 0; head < len(queue); head++ {
		v := queue[head]
		if g.Degree(v) != 1 {
			continue
		}
		e := g.Incident(v)[0]
		if err := g.RemoveEdge(e); err != nil {
			return order, err
		}
		order = append(order, e)
		for _, u := range g.Ends(e) {
			if g.Degree(u) == 1 {
				queue = append(queue, u)
			}
		}
	}
	return order, nil
}

// assignDigits fills g[v] in [0, k) for every node so that, for each edge
// with ends v_0..v_{k-1}, the sum of g over its ends mod k selects the end
// that was free when the edge was peeled. Edges are processed in reverse
// peeling order, which guarantees such a free end exists.
func assignDigits(gr peelable, order []int, k int, digits []uint8) error {
	visited := make([]bool, gr.NumNodes())
	for i := len(order) - 1; i >= 0; i-- {
		ends := gr.Ends(order[i])
		free := -1
		sum := 0
		for j, v := range ends {
			if !visited[v] && free < 0 {
				free = j
				continue
			}
			sum += int(digits[v])
		}
		if free < 0 {
			return fmt.Errorf("%w: edge %d has no free node", pherrors.ErrInternal, order[i])
		}
		digits[ends[free]] = uint8(((free-sum)%k + k) % k)
		for _, v := range ends {
			visited[v] = true
		}
	}
	return nil
}

// selectEnd returns the end chosen by the digit sum.
func selectEnd(ends []int, digits []uint8) int {
	sum := 0
	for _, v := range ends {
		sum += int(digits[v])
	}
	return ends[sum%len(ends)]
}
