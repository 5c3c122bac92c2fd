// Package hashfn implements the reseedable string hash families used to map
// keys onto graph nodes.
//
// A hash function is a preprocessor (per-position character transform)
// composed with an accumulation rule. Randomize redraws every random
// parameter, including the preprocessor table, so consecutive trials are
// statistically independent. Spec freezes the current parameters for
// persistence and query-time evaluation.
package hashfn

import (
	"unsafe"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	"github.com/tamirms/perfecthash/internal/randsrc"
)

// Family identifies an accumulation rule.
type Family uint8

const (
	// FamilyMultSum accumulates r = r*factor + pre(i, c) from a seed.
	FamilyMultSum Family = iota
	// FamilyOneAtATime is Jenkins' one-at-a-time avalanche mix.
	FamilyOneAtATime
	// FamilyMurmur3 is seeded 32-bit MurmurHash3.
	FamilyMurmur3
	// FamilyXXH3 is seeded XXH3-64 folded to 32 bits.
	FamilyXXH3
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyMultSum:
		return "multsum"
	case FamilyOneAtATime:
		return "oneatatime"
	case FamilyMurmur3:
		return "murmur3"
	case FamilyXXH3:
		return "xxh3"
	default:
		return "unknown"
	}
}

// Func is a randomizable string to uint32 hash.
type Func interface {
	Hash(key string) uint32
	// Randomize redraws the seed, factor and preprocessor table.
	Randomize()
	// MaxLen is the longest key Hash accepts, or -1 for no limit.
	MaxLen() int
	// Spec returns a copy of the current parameters.
	Spec() Spec
}

// MultSum is the multiply-accumulate family.
type MultSum struct {
	pre     Preprocessor
	rseed   randsrc.Source
	rfactor randsrc.Source
	seed    uint32
	factor  uint32
}

// NewMultSum composes pre with seed and factor sources. Until the first
// Randomize the seed is 0 and the factor 1.
func NewMultSum(pre Preprocessor, rseed, rfactor randsrc.Source) *MultSum {
	return &MultSum{pre: pre, rseed: rseed, rfactor: rfactor, factor: 1}
}

// Hash folds key into a 32-bit value.
func (h *MultSum) Hash(key string) uint32 {
	r := h.seed
	for i := 0; i < len(key); i++ {
		r = r*h.factor + h.pre.Preprocess(i, key[i])
	}
	return r
}

// Randomize redraws the preprocessor table, then seed and factor.
func (h *MultSum) Randomize() {
	h.pre.Randomize()
	if h.rseed != nil {
		h.seed = h.rseed.Get()
	}
	if h.rfactor != nil {
		h.factor = h.rfactor.Get()
	}
}

// MaxLen returns the preprocessor's limit.
func (h *MultSum) MaxLen() int { return h.pre.MaxLen() }

// Spec returns the current parameters.
func (h *MultSum) Spec() Spec {
	return newSpec(FamilyMultSum, h.pre, h.seed, h.factor)
}

// OneAtATime is Jenkins' one-at-a-time hash with a random initial state.
// See https://en.wikipedia.org/wiki/Jenkins_hash_function.
type OneAtATime struct {
	pre   Preprocessor
	rseed randsrc.Source
	seed  uint32
}

// NewOneAtATime composes pre with a seed source.
func NewOneAtATime(pre Preprocessor, rseed randsrc.Source) *OneAtATime {
	return &OneAtATime{pre: pre, rseed: rseed}
}

// Hash folds key into a 32-bit value.
func (h *OneAtATime) Hash(key string) uint32 {
	r := h.seed
	for i := 0; i < len(key); i++ {
		r += h.pre.Preprocess(i, key[i])
		r += r << 10
		r ^= r >> 6
	}
	r += r << 3
	r ^= r >> 11
	r += r << 15
	return r
}

// Randomize redraws the preprocessor table and seed.
func (h *OneAtATime) Randomize() {
	h.pre.Randomize()
	if h.rseed != nil {
		h.seed = h.rseed.Get()
	}
}

// MaxLen returns the preprocessor's limit.
func (h *OneAtATime) MaxLen() int { return h.pre.MaxLen() }

// Spec returns the current parameters.
func (h *OneAtATime) Spec() Spec {
	return newSpec(FamilyOneAtATime, h.pre, h.seed, 0)
}

// Murmur3 is seeded MurmurHash3 (x86, 32-bit).
type Murmur3 struct {
	rseed randsrc.Source
	seed  uint32
}

// NewMurmur3 returns a Murmur3 hash drawing seeds from rseed.
func NewMurmur3(rseed randsrc.Source) *Murmur3 {
	return &Murmur3{rseed: rseed}
}

// Hash returns murmur3_32(key, seed).
func (h *Murmur3) Hash(key string) uint32 {
	return HashWithSeed(FamilyMurmur3, h.seed, key)
}

// Randomize redraws the seed.
func (h *Murmur3) Randomize() {
	if h.rseed != nil {
		h.seed = h.rseed.Get()
	}
}

// MaxLen returns -1.
func (h *Murmur3) MaxLen() int { return -1 }

// Spec returns the current parameters.
func (h *Murmur3) Spec() Spec {
	return Spec{Family: FamilyMurmur3, Pre: PreNone, Seed: h.seed}
}

// XXH3 is seeded XXH3-64 with the two halves XORed together.
type XXH3 struct {
	rseed randsrc.Source
	seed  uint32
}

// NewXXH3 returns an XXH3 hash drawing seeds from rseed.
func NewXXH3(rseed randsrc.Source) *XXH3 {
	return &XXH3{rseed: rseed}
}

// Hash returns the folded XXH3 digest of key.
func (h *XXH3) Hash(key string) uint32 {
	return HashWithSeed(FamilyXXH3, h.seed, key)
}

// Randomize redraws the seed.
func (h *XXH3) Randomize() {
	if h.rseed != nil {
		h.seed = h.rseed.Get()
	}
}

// MaxLen returns -1.
func (h *XXH3) MaxLen() int { return -1 }

// Spec returns the current parameters.
func (h *XXH3) Spec() Spec {
	return Spec{Family: FamilyXXH3, Pre: PreNone, Seed: h.seed}
}

// NewSeeded returns a seed-only hash of the given family over raw bytes.
// It is how the peeling and bucketing variants pick their hash family.
func NewSeeded(f Family, rseed randsrc.Source) (Func, error) {
	switch f {
	case FamilyOneAtATime:
		return NewOneAtATime(None{}, rseed), nil
	case FamilyMurmur3:
		return NewMurmur3(rseed), nil
	case FamilyXXH3:
		return NewXXH3(rseed), nil
	}
	return nil, unknownFamily(f)
}

// HashWithSeed evaluates the seeded family f at seed without building a
// Func. It hashes exactly like NewSeeded(f, ...) after drawing seed.
func HashWithSeed(f Family, seed uint32, key string) uint32 {
	switch f {
	case FamilyMurmur3:
		return murmur3.Sum32WithSeed(unsafe.Slice(unsafe.StringData(key), len(key)), seed)
	case FamilyXXH3:
		v := xxh3.HashStringSeed(key, uint64(seed))
		return uint32(v) ^ uint32(v>>32)
	default:
		h := OneAtATime{pre: None{}, seed: seed}
		return h.Hash(key)
	}
}

// Fits reports whether key is short enough for f.
func Fits(f Func, key string) bool {
	m := f.MaxLen()
	return m < 0 || len(key) <= m
}
