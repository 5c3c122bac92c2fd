package algo

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/bfs"
	"github.com/tamirms/perfecthash/internal/graph"
	"github.com/tamirms/perfecthash/internal/hashfn"
	"github.com/tamirms/perfecthash/internal/randsrc"
	"github.com/tamirms/perfecthash/internal/unionfind"
)

// CHM builds an acyclic random graph with one edge per key and labels its
// nodes so that the XOR of an edge's end labels is the key's payload. The
// resulting function preserves the caller's order.
type CHM struct {
	log *zap.Logger
}

// Kind returns KindCHM.
func (*CHM) Kind() Kind { return KindCHM }

// LoadFactor returns 1.7.
func (*CHM) LoadFactor() float64 { return 1.7 }

// GrowthRate returns 1.05.
func (*CHM) GrowthRate() float64 { return 1.05 }

// newXORPair returns the two multiply-sum hashes shared by CHM and BMZ:
// both use position-dependent multipliers in [1, n-1], the first starts
// from 0 and the second from a random seed in [0, n-1].
func newXORPair(rng *rand.Rand, maxLen int, n uint32) (hashfn.Func, hashfn.Func) {
	mult := randsrc.NewRange(rng, 1, n-1)
	seed := randsrc.NewRange(rng, 0, n-1)
	h1 := hashfn.NewMultSum(hashfn.NewMult(maxLen, mult), randsrc.Const(0), randsrc.Const(1))
	h2 := hashfn.NewMultSum(hashfn.NewMult(maxLen, mult), seed, randsrc.Const(1))
	return h1, h2
}

// Run attempts up to trials random graphs on n nodes.
func (c *CHM) Run(rng *rand.Rand, in *Input, n uint32, trials int) (res *Result, err error) {
	defer guard(&err)
	if n < 2 {
		return nil, fmt.Errorf("%w: table size %d", pherrors.ErrInvalidOption, n)
	}

	h1, h2 := newXORPair(rng, in.MaxLen, n)
	uf := unionfind.New(int(n))
	ends := make([]int, 2*len(in.Entries))

	t := newTrials(trials, c.log)
	err = t.run(nil, func(int) (rejectReason, error) {
		h1.Randomize()
		h2.Randomize()
		uf.Clear()
		for i, e := range in.Entries {
			a, b := node(h1.Hash(e.Key), n, 0), node(h2.Hash(e.Key), n, 0)
			if uf.DoUnion(a, b) {
				return rejectCycle, nil
			}
			ends[2*i], ends[2*i+1] = a, b
		}
		return accepted, nil
	})
	if err != nil {
		return nil, err
	}

	g := graph.NewMultigraph(int(n))
	for i, e := range in.Entries {
		if err := g.AddEdge(ends[2*i], ends[2*i+1], e.Value); err != nil {
			return nil, err
		}
	}
	values := make([]uint64, n)
	if err := bfs.NewWalker(int(n)).VisitAll(g, xorLabeler(values)); err != nil {
		return nil, err
	}

	res = &Result{
		Kind:    KindCHM,
		N:       n,
		NumKeys: len(in.Entries),
		Hashes:  []hashfn.Spec{h1.Spec(), h2.Spec()},
		Values:  values,
		Trials:  t.attempts,
	}
	if err := res.Prepare(); err != nil {
		return nil, err
	}
	return res, nil
}

// xorLabeler labels each tree root 0 and each child with its parent's
// label XOR the edge payload. A cycle edge is a construction error since
// acyclicity was checked first.
type xorLabeler []uint64

func (x xorLabeler) Root(node int) bool {
	x[node] = 0
	return true
}

func (x xorLabeler) NormalEdge(parent, child int, value uint64) bool {
	x[child] = x[parent] ^ value
	return true
}

func (xorLabeler) CycleEdge(parent, child int, _ uint64) error {
	return fmt.Errorf("%w: cycle edge %d-%d in acyclic graph", pherrors.ErrInternal, parent, child)
}
