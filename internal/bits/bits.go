// Package bits provides a bit vector with constant-time rank, used to
// compress a sparse set of used slots in [0, n) onto [0, m).
package bits

import (
	"fmt"
	"math/bits"

	pherrors "github.com/tamirms/perfecthash/errors"
)

const bitsPerWord = 64

// RankVector is a fixed-length bit vector. After Freeze, Rank(i) counts the
// set bits strictly below i.
type RankVector struct {
	n     int
	words []uint64
	// ranks[w] is the number of set bits in words[:w].
	ranks []uint32
}

// NewRankVector returns an all-zero vector of n bits.
func NewRankVector(n int) *RankVector {
	return &RankVector{n: n, words: make([]uint64, (n+bitsPerWord-1)/bitsPerWord)}
}

// FromWords rebuilds a frozen vector of n bits from its words.
func FromWords(n int, words []uint64) (*RankVector, error) {
	if len(words) != (n+bitsPerWord-1)/bitsPerWord {
		return nil, fmt.Errorf("%w: %d words for %d bits", pherrors.ErrCorruptedFunction, len(words), n)
	}
	if tail := n % bitsPerWord; tail != 0 && words[len(words)-1]>>tail != 0 {
		return nil, fmt.Errorf("%w: bits set beyond length %d", pherrors.ErrCorruptedFunction, n)
	}
	v := &RankVector{n: n, words: words}
	v.Freeze()
	return v, nil
}

// Len returns the number of bits.
func (v *RankVector) Len() int { return v.n }

// Words returns the backing words.
func (v *RankVector) Words() []uint64 { return v.words }

// Set sets bit i and reports whether it was previously clear.
func (v *RankVector) Set(i int) bool {
	w, m := i/bitsPerWord, uint64(1)<<(i%bitsPerWord)
	was := v.words[w]&m != 0
	v.words[w] |= m
	return !was
}

// Get returns bit i.
func (v *RankVector) Get(i int) bool {
	return v.words[i/bitsPerWord]&(1<<(i%bitsPerWord)) != 0
}

// Freeze computes the rank directory. Call it after the last Set.
func (v *RankVector) Freeze() {
	v.ranks = make([]uint32, len(v.words)+1)
	for w, word := range v.words {
		v.ranks[w+1] = v.ranks[w] + uint32(bits.OnesCount64(word))
	}
}

// Count returns the number of set bits. The vector must be frozen.
func (v *RankVector) Count() int {
	return int(v.ranks[len(v.words)])
}

// Rank returns the number of set bits below i. The vector must be frozen.
func (v *RankVector) Rank(i int) int {
	w := i / bitsPerWord
	below := v.words[w] & (uint64(1)<<(i%bitsPerWord) - 1)
	return int(v.ranks[w]) + bits.OnesCount64(below)
}
