package algo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"testing"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/graph"
	"github.com/tamirms/perfecthash/internal/hashfn"
	"github.com/tamirms/perfecthash/internal/unionfind"
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

func randomInput(rng *rand.Rand, m int) *Input {
	in := &Input{Entries: make([]Entry, m)}
	for i := range in.Entries {
		key := fmt.Sprintf("key-%d-%x", i, rng.Uint64())
		in.Entries[i] = Entry{Key: key, Value: uint64(i)}
		in.MaxLen = max(in.MaxLen, len(key))
	}
	return in
}

func newAlgorithm(t testing.TB, k Kind) Algorithm {
	t.Helper()
	a, err := New(k, DefaultConfig())
	if err != nil {
		t.Fatalf("New(%v): %v", k, err)
	}
	return a
}

// search grows n from the algorithm's load factor until Run succeeds.
func search(t testing.TB, rng *rand.Rand, a Algorithm, in *Input) *Result {
	t.Helper()
	f := a.LoadFactor()
	for range 500 {
		n := max(uint32(float64(len(in.Entries))*f+0.5), 2)
		res, err := a.Run(rng, in, n, 20)
		if err == nil {
			return res
		}
		if !errors.Is(err, pherrors.ErrTrialsExhausted) {
			t.Fatalf("%v.Run(n=%d): %v", a.Kind(), n, err)
		}
		f *= a.GrowthRate()
	}
	t.Fatalf("%v: no table size worked", a.Kind())
	return nil
}

func TestEveryKindIsMinimalPerfect(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.String(), func(t *testing.T) {
			rng := newTestRNG(t)
			in := randomInput(rng, 700)
			res := search(t, rng, newAlgorithm(t, k), in)

			seen := make([]bool, len(in.Entries))
			for _, e := range in.Entries {
				got, err := res.Lookup(e.Key)
				if err != nil {
					t.Fatalf("Lookup(%q): %v", e.Key, err)
				}
				if got >= uint64(len(seen)) {
					t.Fatalf("Lookup(%q) = %d, out of range", e.Key, got)
				}
				if seen[got] {
					t.Fatalf("Lookup(%q) = %d, already taken", e.Key, got)
				}
				seen[got] = true
			}
		})
	}
}

func TestCHMThreeKeys(t *testing.T) {
	in := &Input{
		Entries: []Entry{{"a", 0}, {"b", 1}, {"c", 2}},
		MaxLen:  1,
	}
	res := search(t, newTestRNG(t), newAlgorithm(t, KindCHM), in)
	for _, e := range in.Entries {
		got, err := res.Lookup(e.Key)
		if err != nil {
			t.Fatal(err)
		}
		if got != e.Value {
			t.Errorf("Lookup(%q) = %d, want %d", e.Key, got, e.Value)
		}
	}
}

func TestCHMPreservesArbitraryPayloads(t *testing.T) {
	rng := newTestRNG(t)
	in := randomInput(rng, 300)
	for i := range in.Entries {
		in.Entries[i].Value = rng.Uint64()
	}
	res := search(t, rng, newAlgorithm(t, KindCHM), in)
	for _, e := range in.Entries {
		if got, _ := res.Lookup(e.Key); got != e.Value {
			t.Fatalf("Lookup(%q) = %#x, want %#x", e.Key, got, e.Value)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.String(), func(t *testing.T) {
			in := randomInput(newTestRNG(t), 200)
			a := newAlgorithm(t, k)
			r1 := search(t, rand.New(rand.NewPCG(1, 2)), a, in)
			r2 := search(t, rand.New(rand.NewPCG(1, 2)), a, in)
			if r1.N != r2.N || r1.Trials != r2.Trials {
				t.Fatalf("runs differ: n %d/%d trials %d/%d", r1.N, r2.N, r1.Trials, r2.Trials)
			}
			for _, e := range in.Entries {
				x, _ := r1.Lookup(e.Key)
				y, _ := r2.Lookup(e.Key)
				if x != y {
					t.Fatalf("Lookup(%q) differs: %d vs %d", e.Key, x, y)
				}
			}
		})
	}
}

func TestTrialsExhausted(t *testing.T) {
	rng := newTestRNG(t)
	in := randomInput(rng, 50)
	for _, k := range Kinds {
		// Two slots cannot hold fifty keys under any variant.
		_, err := newAlgorithm(t, k).Run(rng, in, 2, 5)
		if !errors.Is(err, pherrors.ErrTrialsExhausted) {
			t.Errorf("%v: err = %v, want ErrTrialsExhausted", k, err)
		}
	}
}

func TestXORVariantsRejectTinyTables(t *testing.T) {
	in := &Input{Entries: []Entry{{"a", 0}}, MaxLen: 1}
	for _, k := range []Kind{KindCHM, KindBMZ} {
		_, err := newAlgorithm(t, k).Run(newTestRNG(t), in, 1, 1)
		if !errors.Is(err, pherrors.ErrInvalidOption) {
			t.Errorf("%v with n=1: %v", k, err)
		}
	}
}

func TestBMZNodesNeverLoop(t *testing.T) {
	for _, n := range []uint32{2, 3, 5, 7, 11, 101, 1009} {
		for h := range n {
			a, b, ok := bmzNodes(h, h, n)
			if ok && a == b {
				t.Fatalf("n=%d h=%d: remapped edge is a loop", n, h)
			}
			if a >= int(n) || b >= int(n) {
				t.Fatalf("n=%d h=%d: nodes %d,%d out of range", n, h, a, b)
			}
		}
	}
	if a, b, ok := bmzNodes(3, 4, 7); !ok || a != 3 || b != 4 {
		t.Errorf("distinct hashes changed: %d %d %v", a, b, ok)
	}
}

func TestBMZAcceptsCyclicGraphs(t *testing.T) {
	// At n = 1.3m most random graphs have cycles, so successful trials
	// exercise the core labeling.
	rng := newTestRNG(t)
	in := randomInput(rng, 2000)
	a := newAlgorithm(t, KindBMZ)
	res, err := a.Run(rng, in, uint32(float64(len(in.Entries))*1.3), 50)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	seen := make(map[uint64]bool)
	for _, e := range in.Entries {
		v, err := res.Lookup(e.Key)
		if err != nil || v >= uint64(len(in.Entries)) || seen[v] {
			t.Fatalf("Lookup(%q) = %d, %v", e.Key, v, err)
		}
		seen[v] = true
	}
}

func TestFindCore(t *testing.T) {
	b := &bmzBuilder{
		g:    graph.NewSimple(6),
		core: make([]bool, 6),
		deg:  make([]int, 6),
	}
	// Triangle 0-1-2 with tail 2-3 and a separate edge 4-5.
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}, {4, 5}} {
		if _, err := b.g.AddEdge(e[0], e[1], 0); err != nil {
			t.Fatal(err)
		}
	}
	if got := b.findCore(); got != 3 {
		t.Errorf("core edges = %d, want 3", got)
	}
	want := []bool{true, true, true, false, false, false}
	for i := range want {
		if b.core[i] != want[i] {
			t.Errorf("core[%d] = %v, want %v", i, b.core[i], want[i])
		}
	}
}

func TestCoreLowerBound(t *testing.T) {
	comps := unionfind.NewAggregate(6)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}} {
		comps.DoUnion(e[0], e[1])
		comps.AdjustValue(e[0], 1, 0)
	}
	if got := coreLowerBound(comps); got != 3 {
		t.Errorf("bound = %d, want 3", got)
	}
}

func TestPeelTriangleHasCore(t *testing.T) {
	g := graph.NewPlain(4, 4)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}} {
		if _, err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	order, err := peel(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 1 || order[0] != 3 {
		t.Errorf("peel order = %v, want [3]", order)
	}
}

func TestPeelAndAssignHyper3(t *testing.T) {
	// Nodes 0-2, 3-5, 6-8 are the three copies.
	edges := [][3]int{{0, 3, 6}, {0, 4, 7}, {1, 4, 8}, {2, 5, 8}}
	g := graph.NewHyper3(9, len(edges))
	for _, e := range edges {
		if _, err := g.AddEdge(e[0], e[1], e[2]); err != nil {
			t.Fatal(err)
		}
	}
	order, err := peel(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != len(edges) {
		t.Fatalf("peeled %d of %d edges", len(order), len(edges))
	}
	digits := make([]uint8, 9)
	if err := assignDigits(g, order, 3, digits); err != nil {
		t.Fatal(err)
	}
	seen := make(map[int]bool)
	for i := range edges {
		v := selectEnd(g.Ends(i), digits)
		if seen[v] {
			t.Fatalf("node %d selected twice", v)
		}
		seen[v] = true
	}
}

func TestCountingSortBuckets(t *testing.T) {
	// Sizes 2, 0, 3, 2, 1.
	starts := []int{0, 2, 2, 5, 7, 8}
	order := make([]int, 5)
	countingSortBuckets(starts, order, nil, nil)
	want := []int{2, 0, 3, 4, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestCHDWithMostlyEmptyBuckets(t *testing.T) {
	in := &Input{Entries: []Entry{{"x", 0}, {"y", 1}, {"z", 2}}, MaxLen: 1}
	res := search(t, newTestRNG(t), newAlgorithm(t, KindCHD), in)
	if len(res.Seeds) != defaultCHDBuckets {
		t.Fatalf("%d bucket seeds", len(res.Seeds))
	}
	for _, e := range in.Entries {
		if v, err := res.Lookup(e.Key); err != nil || v > 2 {
			t.Errorf("Lookup(%q) = %d, %v", e.Key, v, err)
		}
	}
}

func TestTrialStates(t *testing.T) {
	var states []trialState
	tr := newTrials(3, zap.NewNop())
	tr.onState = func(s trialState) { states = append(states, s) }
	err := tr.run(nil, func(i int) (rejectReason, error) {
		if i < 1 {
			return rejectCycle, nil
		}
		return accepted, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []trialState{stateSetup, stateAttempt, stateRetry, stateAttempt, stateSuccess}
	if fmt.Sprint(states) != fmt.Sprint(want) {
		t.Errorf("states = %v, want %v", states, want)
	}
	if tr.attempts != 2 || tr.rejects[rejectCycle] != 1 {
		t.Errorf("attempts %d rejects %v", tr.attempts, tr.rejects)
	}

	tr = newTrials(2, zap.NewNop())
	err = tr.run(nil, func(int) (rejectReason, error) { return rejectLoop, nil })
	if !errors.Is(err, pherrors.ErrTrialsExhausted) {
		t.Errorf("err = %v, want ErrTrialsExhausted", err)
	}
	if tr.state != stateExhausted || tr.attempts != 2 {
		t.Errorf("state %v after %d attempts", tr.state, tr.attempts)
	}

	boom := errors.New("boom")
	tr = newTrials(5, zap.NewNop())
	if err := tr.run(nil, func(int) (rejectReason, error) { return accepted, boom }); !errors.Is(err, boom) {
		t.Errorf("fatal attempt error = %v", err)
	}
	if err := newTrials(5, zap.NewNop()).run(func() error { return boom }, nil); !errors.Is(err, boom) {
		t.Errorf("setup error = %v", err)
	}
}

func TestGuardConvertsIndexPanics(t *testing.T) {
	run := func() (err error) {
		defer guard(&err)
		graph.NewPlain(2, 1).Degree(5)
		return nil
	}
	err := run()
	if !errors.Is(err, pherrors.ErrInternal) || !errors.Is(err, pherrors.ErrInvalidIndex) {
		t.Errorf("err = %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HashFamily = hashfn.FamilyMultSum
	for _, k := range []Kind{KindBDZ2, KindBDZ3, KindCHD} {
		if _, err := New(k, cfg); !errors.Is(err, pherrors.ErrUnknownHash) {
			t.Errorf("%v with multsum: %v", k, err)
		}
	}
	cfg = DefaultConfig()
	cfg.CHDBuckets = 0
	if _, err := New(KindCHD, cfg); !errors.Is(err, pherrors.ErrInvalidOption) {
		t.Errorf("zero buckets: %v", err)
	}
	if _, err := New(Kind(42), DefaultConfig()); !errors.Is(err, pherrors.ErrUnknownAlgorithm) {
		t.Errorf("unknown kind: %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("fch"); !errors.Is(err, pherrors.ErrUnknownAlgorithm) {
		t.Errorf("ParseKind(fch): %v", err)
	}
}

func TestPrepareRejectsInconsistentTables(t *testing.T) {
	rng := newTestRNG(t)
	in := randomInput(rng, 100)
	res := search(t, rng, newAlgorithm(t, KindBDZ3), in)

	bad := *res
	bad.Digits = bad.Digits[:len(bad.Digits)-1]
	if err := bad.Prepare(); !errors.Is(err, pherrors.ErrCorruptedFunction) {
		t.Errorf("short digits: %v", err)
	}
	bad = *res
	bad.NumKeys++
	if err := bad.Prepare(); !errors.Is(err, pherrors.ErrCorruptedFunction) {
		t.Errorf("key count mismatch: %v", err)
	}
	bad = *res
	bad.Hashes = bad.Hashes[:2]
	if err := bad.Prepare(); !errors.Is(err, pherrors.ErrCorruptedFunction) {
		t.Errorf("missing hash: %v", err)
	}
}

func TestLookupKeyTooLong(t *testing.T) {
	in := &Input{Entries: []Entry{{"ab", 0}, {"cd", 1}}, MaxLen: 2}
	res := search(t, newTestRNG(t), newAlgorithm(t, KindCHM), in)
	if _, err := res.Lookup("abc"); !errors.Is(err, pherrors.ErrKeyTooLong) {
		t.Errorf("Lookup(abc): %v", err)
	}
}
