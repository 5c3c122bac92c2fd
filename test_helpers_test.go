package perfecthash

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateRandomKeys returns n distinct printable keys.
func generateRandomKeys(rng *rand.Rand, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%d/%016x", i, rng.Uint64())
	}
	return keys
}

// randomKeySet maps n random keys to random payloads.
func randomKeySet(t testing.TB, rng *rand.Rand, n int) *KeySet {
	t.Helper()
	ks := NewKeySet()
	for _, k := range generateRandomKeys(rng, n) {
		if err := ks.Add(k, rng.Uint64()); err != nil {
			t.Fatalf("Add(%q): %v", k, err)
		}
	}
	return ks
}

// quickBuild builds with a seed derived from the test name.
func quickBuild(t testing.TB, ks *KeySet, opts ...BuildOption) *Function {
	t.Helper()
	rng := newTestRNG(t)
	opts = append([]BuildOption{WithSeed(rng.Uint64(), rng.Uint64())}, opts...)
	fn, err := Build(context.Background(), ks, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return fn
}

// verifyMPHF checks that every key of ks gets its payload back and, for
// index-returning algorithms, a distinct index in [0, m).
func verifyMPHF(t testing.TB, fn *Function, ks *KeySet) {
	t.Helper()
	if err := fn.Verify(ks); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if fn.Algorithm().OrderPreserving() {
		return
	}
	seen := make([]bool, ks.Len())
	for key := range ks.All() {
		idx, err := fn.Lookup(key)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", key, err)
		}
		if idx >= uint64(len(seen)) || seen[idx] {
			t.Fatalf("Lookup(%q) = %d: out of range or repeated", key, idx)
		}
		seen[idx] = true
	}
}
