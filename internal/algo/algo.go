// Package algo implements the randomized graph constructions that produce a
// perfect hash function for a fixed key set at a given table size n.
//
// Each Algorithm attempts up to a trial budget of independent randomized
// trials. Trial-local infeasibility (a cycle, a parallel edge, a core that
// is too large, an incomplete peeling, a bucket without a collision-free
// seed) starts a fresh trial; running out of trials returns an error
// wrapping ErrTrialsExhausted so the caller can grow n. Every other error
// is fatal.
package algo

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/hashfn"
	"github.com/tamirms/perfecthash/internal/primes"
)

// Kind identifies a construction algorithm. It is stored in function files.
type Kind uint8

const (
	// KindCHM is the acyclic random graph method; order preserving.
	KindCHM Kind = iota
	// KindBMZ tolerates cycles in a 2-core of bounded size.
	KindBMZ
	// KindBDZ2 peels an acyclic bipartite graph.
	KindBDZ2
	// KindBDZ3 peels a 3-uniform hypergraph.
	KindBDZ3
	// KindCHD hashes into buckets and displaces each bucket with its own seed.
	KindCHD
)

// String returns the algorithm name.
func (k Kind) String() string {
	switch k {
	case KindCHM:
		return "chm"
	case KindBMZ:
		return "bmz"
	case KindBDZ2:
		return "bdz2"
	case KindBDZ3:
		return "bdz3"
	case KindCHD:
		return "chd"
	default:
		return "unknown"
	}
}

// Kinds lists every algorithm.
var Kinds = []Kind{KindCHM, KindBMZ, KindBDZ2, KindBDZ3, KindCHD}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", pherrors.ErrUnknownAlgorithm, s)
}

// Entry is one key and its payload.
type Entry struct {
	Key   string
	Value uint64
}

// Input is the key set handed read-only to every Run.
type Input struct {
	// Entries are unique keys in a fixed order; the order determines which
	// random draws each key sees.
	Entries []Entry
	// MaxLen is the longest key length.
	MaxLen int
}

// Config carries tuning shared by all algorithms.
type Config struct {
	PrimeRounds      int
	HashFamily       hashfn.Family // seeded family for BDZ2, BDZ3 and CHD
	CHDBuckets       int
	CHDBucketRetries int
	Logger           *zap.Logger
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		PrimeRounds:      primes.DefaultRounds,
		HashFamily:       hashfn.FamilyOneAtATime,
		CHDBuckets:       defaultCHDBuckets,
		CHDBucketRetries: defaultCHDBucketRetries,
		Logger:           zap.NewNop(),
	}
}

// Algorithm is one construction strategy.
type Algorithm interface {
	Kind() Kind
	// LoadFactor is the initial ratio n/m the size search starts from.
	LoadFactor() float64
	// GrowthRate multiplies the load factor after a failed Run.
	GrowthRate() float64
	// Run attempts up to trials randomized constructions on a table of size
	// n. All randomness is drawn from rng.
	Run(rng *rand.Rand, in *Input, n uint32, trials int) (*Result, error)
}

// New returns the algorithm of the given kind.
func New(k Kind, cfg Config) (Algorithm, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.PrimeRounds <= 0 {
		cfg.PrimeRounds = primes.DefaultRounds
	}
	switch k {
	case KindCHM:
		return &CHM{log: cfg.Logger}, nil
	case KindBMZ:
		return &BMZ{log: cfg.Logger}, nil
	case KindBDZ2, KindBDZ3:
		if _, err := hashfn.NewSeeded(cfg.HashFamily, nil); err != nil {
			return nil, err
		}
		if k == KindBDZ2 {
			return &BDZ2{family: cfg.HashFamily, log: cfg.Logger}, nil
		}
		return &BDZ3{family: cfg.HashFamily, log: cfg.Logger}, nil
	case KindCHD:
		if _, err := hashfn.NewSeeded(cfg.HashFamily, nil); err != nil {
			return nil, err
		}
		if cfg.CHDBuckets <= 0 || cfg.CHDBucketRetries <= 0 {
			return nil, fmt.Errorf("%w: CHD needs positive bucket count and retries", pherrors.ErrInvalidOption)
		}
		return &CHD{
			family:  cfg.HashFamily,
			buckets: cfg.CHDBuckets,
			retries: cfg.CHDBucketRetries,
			log:     cfg.Logger,
		}, nil
	}
	return nil, fmt.Errorf("%w: %d", pherrors.ErrUnknownAlgorithm, k)
}

// guard converts an out-of-range index panic from the graph arenas into an
// internal error.
func guard(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.Is(e, pherrors.ErrInvalidIndex) {
		*err = fmt.Errorf("%w: %w", pherrors.ErrInternal, e)
		return
	}
	panic(r)
}

// node reduces a 32-bit hash into copy c of a table of size n.
func node(h, n uint32, c int) int {
	return int(h%n) + c*int(n)
}
