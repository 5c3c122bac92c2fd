package algo

import (
	"fmt"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/bits"
	"github.com/tamirms/perfecthash/internal/hashfn"
)

// Result is a constructed function: the frozen hash parameters and the
// per-node or per-bucket tables a query needs. Which tables are set
// depends on Kind.
type Result struct {
	Kind    Kind
	N       uint32
	NumKeys int
	Hashes  []hashfn.Spec

	// Values holds one XOR label per node (CHM, BMZ).
	Values []uint64
	// Digits holds g in [0, k) per node across all k copies (BDZ2, BDZ3).
	Digits []uint8
	// Used marks selected nodes (BDZ2, BDZ3) or taken slots (CHD).
	Used *bits.RankVector
	// Seeds holds the displacement seed of each CHD bucket, evaluated with
	// SeedFamily.
	Seeds      []uint32
	SeedFamily hashfn.Family

	// Trials is the number of attempts the successful Run made.
	Trials int

	funcs []hashfn.Func
}

func (r *Result) arity() int {
	switch r.Kind {
	case KindBDZ3:
		return 3
	case KindCHD:
		return 1
	default:
		return 2
	}
}

func corrupted(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{pherrors.ErrCorruptedFunction}, args...)...)
}

// Prepare validates the tables against each other and rebuilds the hash
// functions from Hashes. Run calls it; decoders must call it before
// Lookup.
func (r *Result) Prepare() error {
	if r.N == 0 {
		return corrupted("zero table size")
	}
	if r.NumKeys <= 0 || uint64(r.NumKeys) > uint64(r.N)*uint64(r.arity()) {
		return corrupted("%d keys in table of size %d", r.NumKeys, r.N)
	}
	if len(r.Hashes) != r.arity() {
		return corrupted("%v needs %d hash functions, have %d", r.Kind, r.arity(), len(r.Hashes))
	}
	nodes := int(r.N) * r.arity()
	switch r.Kind {
	case KindCHM, KindBMZ:
		if len(r.Values) != int(r.N) {
			return corrupted("%d node values for n=%d", len(r.Values), r.N)
		}
	case KindBDZ2, KindBDZ3:
		if len(r.Digits) != nodes {
			return corrupted("%d node digits for %d nodes", len(r.Digits), nodes)
		}
		for _, d := range r.Digits {
			if int(d) >= r.arity() {
				return corrupted("digit %d out of range", d)
			}
		}
	case KindCHD:
		if len(r.Seeds) == 0 {
			return corrupted("no buckets")
		}
		if _, err := hashfn.NewSeeded(r.SeedFamily, nil); err != nil {
			return corrupted("seed family: %v", err)
		}
	default:
		return fmt.Errorf("%w: %d", pherrors.ErrUnknownAlgorithm, r.Kind)
	}
	if r.Kind == KindBDZ2 || r.Kind == KindBDZ3 || r.Kind == KindCHD {
		if r.Used == nil || r.Used.Len() != nodes {
			return corrupted("used bitmap does not cover %d nodes", nodes)
		}
		if r.Used.Count() != r.NumKeys {
			return corrupted("%d used slots for %d keys", r.Used.Count(), r.NumKeys)
		}
	}

	r.funcs = make([]hashfn.Func, 0, len(r.Hashes))
	for _, s := range r.Hashes {
		f, err := s.Func()
		if err != nil {
			return err
		}
		r.funcs = append(r.funcs, f)
	}
	return nil
}

// Lookup evaluates the function at key. CHM returns the stored payload;
// every other kind returns an index in [0, NumKeys). Keys outside the
// original set map to an arbitrary value unless a table proves them
// absent, in which case the error wraps ErrNotFound.
func (r *Result) Lookup(key string) (uint64, error) {
	var h [3]uint32
	for i, f := range r.funcs {
		if !hashfn.Fits(f, key) {
			return 0, fmt.Errorf("%w: %d bytes", pherrors.ErrKeyTooLong, len(key))
		}
		h[i] = f.Hash(key)
	}

	switch r.Kind {
	case KindCHM:
		return r.Values[node(h[0], r.N, 0)] ^ r.Values[node(h[1], r.N, 0)], nil

	case KindBMZ:
		a, b, ok := bmzNodes(h[0], h[1], r.N)
		if !ok {
			return 0, pherrors.ErrNotFound
		}
		return r.Values[a] ^ r.Values[b], nil

	case KindBDZ2, KindBDZ3:
		var buf [3]int
		ends := buf[:r.arity()]
		for j := range ends {
			ends[j] = node(h[j], r.N, j)
		}
		return r.rank(selectEnd(ends, r.Digits))

	case KindCHD:
		b := h[0] % uint32(len(r.Seeds))
		slot := hashfn.HashWithSeed(r.SeedFamily, r.Seeds[b], key) % r.N
		return r.rank(int(slot))
	}
	return 0, fmt.Errorf("%w: %d", pherrors.ErrUnknownAlgorithm, r.Kind)
}

func (r *Result) rank(v int) (uint64, error) {
	if !r.Used.Get(v) {
		return 0, pherrors.ErrNotFound
	}
	return uint64(r.Used.Rank(v)), nil
}
