// Package randsrc provides the pluggable 32-bit random sources that hash
// functions draw their parameters from.
//
// Every source that needs randomness holds a reference to the single
// generator of the current build. Drawing from one source advances the
// generator for all others, so the order of Get calls is part of the
// reproducible behavior of a build.
package randsrc

import (
	"fmt"
	"math"
	"math/rand/v2"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/primes"
)

// Source produces uniformly distributed 32-bit values.
type Source interface {
	Get() uint32
}

// Const always returns the same value.
type Const uint32

// Get returns c.
func (c Const) Get() uint32 {
	return uint32(c)
}

// Range draws uniformly from the closed interval [lo, hi].
type Range struct {
	rng    *rand.Rand
	lo, hi uint32
}

// NewRange returns a source over [lo, hi]. It panics if lo > hi.
func NewRange(rng *rand.Rand, lo, hi uint32) *Range {
	if lo > hi {
		panic(fmt.Sprintf("randsrc: empty range [%d, %d]", lo, hi))
	}
	return &Range{rng: rng, lo: lo, hi: hi}
}

// Get draws the next value.
func (r *Range) Get() uint32 {
	if r.lo == 0 && r.hi == math.MaxUint32 {
		return r.rng.Uint32()
	}
	return r.lo + r.rng.Uint32N(r.hi-r.lo+1)
}

// Prime draws from [lo, hi] until the primality oracle accepts the value.
// Results are never cached; each Get samples afresh.
type Prime struct {
	r      Range
	rounds int
}

// NewPrime returns a prime-filtered source over [lo, hi]. The range must
// contain at least one prime or Get never returns.
func NewPrime(rng *rand.Rand, lo, hi uint32, rounds int) *Prime {
	return &Prime{r: *NewRange(rng, lo, hi), rounds: rounds}
}

// Get draws the next probable prime.
func (p *Prime) Get() uint32 {
	for {
		x := p.r.Get()
		if primes.IsPrime(x, p.rounds, p.r.rng) {
			return x
		}
	}
}

// List picks uniformly from a fixed candidate list.
type List struct {
	rng  *rand.Rand
	list []uint32
}

// NewList returns a source over list. The list is copied.
func NewList(rng *rand.Rand, list []uint32) (*List, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty candidate list", pherrors.ErrInvalidOption)
	}
	return &List{rng: rng, list: append([]uint32(nil), list...)}, nil
}

// Get returns a random list entry.
func (l *List) Get() uint32 {
	return l.list[l.rng.IntN(len(l.list))]
}
