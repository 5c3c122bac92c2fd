package algo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/bits"
	"github.com/tamirms/perfecthash/internal/graph"
	"github.com/tamirms/perfecthash/internal/hashfn"
	"github.com/tamirms/perfecthash/internal/randsrc"
	"github.com/tamirms/perfecthash/internal/unionfind"
)

// BDZ2 maps each key to an edge between two disjoint copies of [0, n) and
// requires the graph to peel completely.
type BDZ2 struct {
	family hashfn.Family
	log    *zap.Logger
}

// Kind returns KindBDZ2.
func (*BDZ2) Kind() Kind { return KindBDZ2 }

// LoadFactor returns 0.9.
func (*BDZ2) LoadFactor() float64 { return 0.9 }

// GrowthRate returns 1.02.
func (*BDZ2) GrowthRate() float64 { return 1.02 }

// Run attempts up to trials random bipartite graphs on 2n nodes.
func (z *BDZ2) Run(rng *rand.Rand, in *Input, n uint32, trials int) (res *Result, err error) {
	defer guard(&err)
	p, err := newPeeling(rng, z.family, 2, n, len(in.Entries))
	if err != nil {
		return nil, err
	}
	uf := unionfind.New(2 * int(n))
	g := graph.NewPlain(2*int(n), len(in.Entries))
	p.g = g

	t := newTrials(trials, z.log)
	err = t.run(nil, func(int) (rejectReason, error) {
		p.randomize()
		uf.Clear()
		for _, e := range in.Entries {
			a, b := p.ends(e.Key, 0), p.ends(e.Key, 1)
			if uf.DoUnion(a, b) {
				return rejectCycle, nil
			}
		}
		g.Clear()
		for _, e := range in.Entries {
			if _, err := g.AddEdge(p.ends(e.Key, 0), p.ends(e.Key, 1)); err != nil {
				return accepted, err
			}
		}
		return p.solve()
	})
	if err != nil {
		return nil, err
	}
	return p.result(KindBDZ2, t.attempts)
}

// BDZ3 maps each key to a hyperedge across three disjoint copies of
// [0, n). Random 3-uniform hypergraphs stay peelable up to m/n ~ 0.81 per
// copy, so the table is far smaller than with two copies.
type BDZ3 struct {
	family hashfn.Family
	log    *zap.Logger
}

// Kind returns KindBDZ3.
func (*BDZ3) Kind() Kind { return KindBDZ3 }

// LoadFactor returns 0.38.
func (*BDZ3) LoadFactor() float64 { return 0.38 }

// GrowthRate returns 1.02.
func (*BDZ3) GrowthRate() float64 { return 1.02 }

// Run attempts up to trials random hypergraphs on 3n nodes.
func (z *BDZ3) Run(rng *rand.Rand, in *Input, n uint32, trials int) (res *Result, err error) {
	defer guard(&err)
	p, err := newPeeling(rng, z.family, 3, n, len(in.Entries))
	if err != nil {
		return nil, err
	}
	g := graph.NewHyper3(3*int(n), len(in.Entries))
	p.g = g

	t := newTrials(trials, z.log)
	err = t.run(nil, func(int) (rejectReason, error) {
		p.randomize()
		g.Clear()
		for _, e := range in.Entries {
			if _, err := g.AddEdge(p.ends(e.Key, 0), p.ends(e.Key, 1), p.ends(e.Key, 2)); err != nil {
				return accepted, err
			}
		}
		return p.solve()
	})
	if err != nil {
		return nil, err
	}
	return p.result(KindBDZ3, t.attempts)
}

// peeling is the state shared by the BDZ variants: k seeded hashes, one
// per node copy, and the digit table produced by a successful peel.
type peeling struct {
	k      int
	n      uint32
	m      int
	hashes []hashfn.Func
	g      peelable
	order  []int
	digits []uint8
	used   *bits.RankVector
}

func newPeeling(rng *rand.Rand, fam hashfn.Family, k int, n uint32, m int) (*peeling, error) {
	if n == 0 || uint64(k)*uint64(n) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: table size %d", pherrors.ErrInvalidOption, n)
	}
	seeds := randsrc.NewRange(rng, 0, math.MaxUint32)
	p := &peeling{
		k:      k,
		n:      n,
		m:      m,
		order:  make([]int, 0, m),
		digits: make([]uint8, k*int(n)),
	}
	for range k {
		f, err := hashfn.NewSeeded(fam, seeds)
		if err != nil {
			return nil, err
		}
		p.hashes = append(p.hashes, f)
	}
	return p, nil
}

func (p *peeling) randomize() {
	for _, f := range p.hashes {
		f.Randomize()
	}
}

// ends returns the node of key in copy c.
func (p *peeling) ends(key string, c int) int {
	return node(p.hashes[c].Hash(key), p.n, c)
}

// solve peels the current graph, assigns digits and checks that the
// selected nodes are distinct.
func (p *peeling) solve() (rejectReason, error) {
	var err error
	p.order, err = peel(p.g, p.order)
	if err != nil {
		return accepted, err
	}
	if len(p.order) != p.m {
		return rejectPeeling, nil
	}
	clear(p.digits)
	if err := assignDigits(p.g, p.order, p.k, p.digits); err != nil {
		return accepted, err
	}
	p.used = bits.NewRankVector(len(p.digits))
	for e := range p.m {
		v := selectEnd(p.g.Ends(e), p.digits)
		if !p.used.Set(v) {
			return accepted, fmt.Errorf("%w: node %d selected twice", pherrors.ErrInternal, v)
		}
	}
	p.used.Freeze()
	return accepted, nil
}

func (p *peeling) result(k Kind, attempts int) (*Result, error) {
	res := &Result{
		Kind:    k,
		N:       p.n,
		NumKeys: p.m,
		Digits:  p.digits,
		Used:    p.used,
		Trials:  attempts,
	}
	for _, f := range p.hashes {
		res.Hashes = append(res.Hashes, f.Spec())
	}
	if err := res.Prepare(); err != nil {
		return nil, err
	}
	return res, nil
}
