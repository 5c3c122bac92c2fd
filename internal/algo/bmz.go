package algo

import (
	"fmt"
	"math/bits"
	"math/rand/v2"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/bfs"
	"github.com/tamirms/perfecthash/internal/graph"
	"github.com/tamirms/perfecthash/internal/hashfn"
	"github.com/tamirms/perfecthash/internal/unionfind"
)

// BMZ allows cycles as long as the 2-core holds at most half the edges.
// Core nodes get labels chosen greedily so that every core edge receives a
// distinct index; the forest hanging off the core is then labeled with the
// remaining indices in increasing order.
type BMZ struct {
	log *zap.Logger
}

// Kind returns KindBMZ.
func (*BMZ) Kind() Kind { return KindBMZ }

// LoadFactor returns 1.3.
func (*BMZ) LoadFactor() float64 { return 1.3 }

// GrowthRate returns 1.02.
func (*BMZ) GrowthRate() float64 { return 1.02 }

// bmzNodes maps a key's two hashes to its edge. When both land on the same
// node the second is remapped to a neighbouring node of opposite parity;
// ok is false if they still coincide.
func bmzNodes(h1, h2, n uint32) (a, b int, ok bool) {
	a, b = int(h1%n), int(h2%n)
	if a == b {
		off := uint64(a&1) ^ uint64(n&1) ^ 1
		b = int((uint64(a)*2 + off) % uint64(n))
	}
	return a, b, a != b
}

// Run attempts up to trials random simple graphs on n nodes.
func (z *BMZ) Run(rng *rand.Rand, in *Input, n uint32, trials int) (res *Result, err error) {
	defer guard(&err)
	if n < 2 {
		return nil, fmt.Errorf("%w: table size %d", pherrors.ErrInvalidOption, n)
	}

	m := len(in.Entries)
	h1, h2 := newXORPair(rng, in.MaxLen, n)
	g := graph.NewSimple(int(n))
	comps := unionfind.NewAggregate(int(n))
	b := &bmzBuilder{
		g:      g,
		m:      m,
		core:   make([]bool, n),
		deg:    make([]int, n),
		values: make([]uint64, n),
		walker: bfs.NewWalker(int(n)),
	}

	t := newTrials(trials, z.log)
	err = t.run(nil, func(int) (rejectReason, error) {
		h1.Randomize()
		h2.Randomize()
		g.Clear()
		comps.Clear()
		for i, e := range in.Entries {
			a, c, ok := bmzNodes(h1.Hash(e.Key), h2.Hash(e.Key), n)
			if !ok {
				return rejectLoop, nil
			}
			added, err := g.AddEdge(a, c, uint64(i))
			if err != nil {
				return accepted, err
			}
			if !added {
				return rejectParallel, nil
			}
			comps.DoUnion(a, c)
			comps.AdjustValue(a, 1, 0)
		}
		if 2*coreLowerBound(comps) > m {
			return rejectCoreTooLarge, nil
		}
		if 2*b.findCore() > m {
			return rejectCoreTooLarge, nil
		}
		return b.assign()
	})
	if err != nil {
		return nil, err
	}

	res = &Result{
		Kind:    KindBMZ,
		N:       n,
		NumKeys: m,
		Hashes:  []hashfn.Spec{h1.Spec(), h2.Spec()},
		Values:  append([]uint64(nil), b.values...),
		Trials:  t.attempts,
	}
	if err := res.Prepare(); err != nil {
		return nil, err
	}
	return res, nil
}

// coreLowerBound bounds the 2-core size from component totals. Peeling a
// connected component removes one edge per node, so a component with E
// edges and V >= E nodes has no core, and otherwise its core has
// E - V + Vcore edges with Vcore >= 3 in a simple graph.
func coreLowerBound(comps *unionfind.Aggregate) int {
	bound := 0
	for i := range comps.Len() {
		if comps.FindIdentity(i) != i {
			continue
		}
		e, v := int(comps.Value(i)), comps.Size(i)
		if e >= v {
			bound += e - v + 3
		}
	}
	return bound
}

type bmzBuilder struct {
	g      *graph.Simple
	m      int
	core   []bool
	deg    []int
	queue  []int
	values []uint64
	walker *bfs.Walker

	used     []bool
	limit    uint64
	nextFree int
	labeled  int
	scratch  []uint64
	stuck    bool
}

// findCore marks the 2-core by peeling nodes of degree at most one and
// returns the number of edges with both ends in it.
func (b *bmzBuilder) findCore() int {
	b.queue = b.queue[:0]
	for i := range b.core {
		b.core[i] = true
		b.deg[i] = b.g.Degree(i)
		if b.deg[i] <= 1 {
			b.queue = append(b.queue, i)
		}
	}
	for head := 0; head < len(b.queue); head++ {
		v := b.queue[head]
		if !b.core[v] {
			continue
		}
		b.core[v] = false
		for _, a := range b.g.Adjacency(v) {
			if !b.core[a.Node] {
				continue
			}
			b.deg[a.Node]--
			if b.deg[a.Node] == 1 {
				b.queue = append(b.queue, a.Node)
			}
		}
	}
	edges := 0
	for v, in := range b.core {
		if in {
			edges += b.deg[v]
		}
	}
	return edges / 2
}

// assign labels every node. Core nodes are labeled first with a BFS
// restricted to the core; then the forest is labeled from the core
// outwards, then the remaining trees from arbitrary roots.
func (b *bmzBuilder) assign() (rejectReason, error) {
	if cap(b.used) < b.m {
		b.used = make([]bool, b.m)
	}
	b.used = b.used[:b.m]
	clear(b.used)
	clear(b.values)
	b.limit = 1 << bits.Len(uint(b.m))
	b.nextFree = 0
	b.labeled = 0
	b.stuck = false

	b.walker.Reset(len(b.core))
	if err := b.walker.Continue(b.g, coreLabeler{b}); err != nil {
		return accepted, err
	}
	if b.stuck {
		return rejectCoreValues, nil
	}

	b.walker.Reset(len(b.core))
	if err := b.walker.Continue(b.g, forestLabeler{b: b, fromCore: true}); err != nil {
		return accepted, err
	}
	if err := b.walker.Continue(b.g, forestLabeler{b: b}); err != nil {
		return accepted, err
	}
	if b.labeled != b.m {
		return accepted, fmt.Errorf("%w: labeled %d of %d edges", pherrors.ErrInternal, b.labeled, b.m)
	}
	return accepted, nil
}

// pick finds the smallest label x for core node v such that x XOR the
// label of every already labeled core neighbour is a distinct unused index
// below m, and claims those indices.
func (b *bmzBuilder) pick(v int) bool {
	adj := b.g.Adjacency(v)
	for x := uint64(0); x < b.limit; x++ {
		b.scratch = b.scratch[:0]
		ok := true
		for _, a := range adj {
			if !b.core[a.Node] || !b.walker.Visited(a.Node) || a.Node == v {
				continue
			}
			idx := x ^ b.values[a.Node]
			if idx >= uint64(b.m) || b.used[idx] || contains(b.scratch, idx) {
				ok = false
				break
			}
			b.scratch = append(b.scratch, idx)
		}
		if !ok {
			continue
		}
		b.values[v] = x
		for _, idx := range b.scratch {
			b.used[idx] = true
		}
		b.labeled += len(b.scratch)
		return true
	}
	return false
}

func contains(s []uint64, x uint64) bool {
	for _, y := range s {
		if y == x {
			return true
		}
	}
	return false
}

// free returns the smallest unused index and claims it.
func (b *bmzBuilder) free() (uint64, error) {
	for b.nextFree < b.m && b.used[b.nextFree] {
		b.nextFree++
	}
	if b.nextFree >= b.m {
		return 0, fmt.Errorf("%w: BMZ ran out of indices", pherrors.ErrInternal)
	}
	b.used[b.nextFree] = true
	b.labeled++
	return uint64(b.nextFree), nil
}

type coreLabeler struct{ b *bmzBuilder }

func (c coreLabeler) Root(node int) bool {
	if !c.b.core[node] || c.b.stuck {
		return false
	}
	// A new root has no labeled core neighbours, so this takes label 0.
	if !c.b.pick(node) {
		c.b.stuck = true
		return false
	}
	return true
}

func (c coreLabeler) NormalEdge(_, child int, _ uint64) bool {
	if !c.b.core[child] || c.b.stuck {
		return false
	}
	if !c.b.pick(child) {
		c.b.stuck = true
		return false
	}
	return true
}

func (coreLabeler) CycleEdge(int, int, uint64) error { return nil }

type forestLabeler struct {
	b        *bmzBuilder
	fromCore bool
}

func (f forestLabeler) Root(node int) bool {
	if f.fromCore {
		return f.b.core[node]
	}
	f.b.values[node] = 0
	return true
}

func (f forestLabeler) NormalEdge(parent, child int, _ uint64) bool {
	if f.b.core[child] {
		return false
	}
	idx, err := f.b.free()
	if err != nil {
		// Leave the child unlabeled; assign reports the shortfall.
		return false
	}
	f.b.values[child] = f.b.values[parent] ^ idx
	return true
}

func (f forestLabeler) CycleEdge(parent, child int, _ uint64) error {
	if f.b.core[parent] && f.b.core[child] {
		return nil
	}
	return fmt.Errorf("%w: cycle edge %d-%d outside the core", pherrors.ErrInternal, parent, child)
}
