package randsrc

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/primes"
)

const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(testSeed1, testSeed2))
}

func TestConst(t *testing.T) {
	c := Const(33)
	for range 10 {
		if got := c.Get(); got != 33 {
			t.Fatalf("Const(33).Get() = %d", got)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	cases := []struct {
		name   string
		lo, hi uint32
	}{
		{"single", 7, 7},
		{"small", 1, 10},
		{"upper_edge", math.MaxUint32 - 3, math.MaxUint32},
		{"full", 0, math.MaxUint32},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRange(newRNG(), tc.lo, tc.hi)
			for range 1000 {
				x := r.Get()
				if x < tc.lo || x > tc.hi {
					t.Fatalf("Get() = %d outside [%d, %d]", x, tc.lo, tc.hi)
				}
			}
		})
	}
}

func TestRangeCoversSmallInterval(t *testing.T) {
	r := NewRange(newRNG(), 3, 6)
	seen := make(map[uint32]bool)
	for range 1000 {
		seen[r.Get()] = true
	}
	if len(seen) != 4 {
		t.Errorf("saw %d distinct values, want 4", len(seen))
	}
}

func TestRangeDeterministic(t *testing.T) {
	a := NewRange(newRNG(), 0, 1000)
	b := NewRange(newRNG(), 0, 1000)
	for i := range 100 {
		if x, y := a.Get(), b.Get(); x != y {
			t.Fatalf("draw %d: %d != %d with identical seeds", i, x, y)
		}
	}
}

func TestPrime(t *testing.T) {
	rng := newRNG()
	p := NewPrime(rng, 1, 1000, primes.DefaultRounds)
	for range 200 {
		x := p.Get()
		if x < 1 || x > 1000 || !primes.IsPrime(x, primes.DefaultRounds, rng) {
			t.Fatalf("Prime.Get() = %d, not a prime in [1, 1000]", x)
		}
	}
}

func TestList(t *testing.T) {
	cands := []uint32{3, 5, 7, 9}
	l, err := NewList(newRNG(), cands)
	if err != nil {
		t.Fatal(err)
	}
	cands[0] = 100 // must not affect the source
	for range 200 {
		if x := l.Get(); !slices.Contains([]uint32{3, 5, 7, 9}, x) {
			t.Fatalf("List.Get() = %d, not a candidate", x)
		}
	}

	if _, err := NewList(newRNG(), nil); !errors.Is(err, pherrors.ErrInvalidOption) {
		t.Errorf("NewList(nil) error = %v, want ErrInvalidOption", err)
	}
}
