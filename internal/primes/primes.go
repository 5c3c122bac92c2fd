// Package primes provides the probabilistic primality oracle used to pick
// table sizes and prime-valued random parameters.
package primes

import (
	"math"
	"math/bits"
	"math/rand/v2"
)

// DefaultRounds is the number of Miller-Rabin witnesses drawn per test.
// A composite passes all rounds with probability at most 4^-DefaultRounds.
const DefaultRounds = 16

func mulmod(a, b, mod uint32) uint32 {
	return uint32(uint64(a) * uint64(b) % uint64(mod))
}

func powmod(b, e, mod uint32) uint32 {
	r := uint32(1)
	for e > 0 {
		if e&1 != 0 {
			r = mulmod(r, b, mod)
		}
		b = mulmod(b, b, mod)
		e >>= 1
	}
	return r
}

// witness reports whether a fails to prove n composite, where n-1 = d·2^s
// with d odd.
func witness(a, d uint32, s int, n uint32) bool {
	x := powmod(a, d, n)
	if x == 1 || x == n-1 {
		return true
	}
	for r := 1; r < s; r++ {
		x = mulmod(x, x, n)
		if x == n-1 {
			return true
		}
		if x == 1 {
			// Nontrivial square root of 1.
			return false
		}
	}
	return false
}

// IsPrime reports whether n is probably prime.
//
// Values up to 3 and even values are decided exactly. Otherwise rounds
// independent witnesses are drawn uniformly from [2, n-2]; the first failed
// witness returns false. Primes are never rejected.
func IsPrime(n uint32, rounds int, rng *rand.Rand) bool {
	if n <= 3 {
		return n >= 2
	}
	if n%2 == 0 {
		return false
	}

	s := bits.TrailingZeros32(n - 1)
	d := (n - 1) >> s

	for range rounds {
		a := 2 + rng.Uint32N(n-3)
		if !witness(a, d, s, n) {
			return false
		}
	}
	return true
}

// NextPrime returns the smallest value >= n that passes IsPrime.
// ok is false if no such value fits in a uint32.
func NextPrime(n uint32, rounds int, rng *rand.Rand) (p uint32, ok bool) {
	for !IsPrime(n, rounds, rng) {
		if n == math.MaxUint32 {
			return 0, false
		}
		n++
	}
	return n, true
}
