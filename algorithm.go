package perfecthash

import (
	"fmt"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/algo"
	"github.com/tamirms/perfecthash/internal/hashfn"
)

// AlgorithmID identifies the construction algorithm. It is stored in the
// function file header.
type AlgorithmID uint8

const (
	// AlgoCHM builds an acyclic random graph. The function is order
	// preserving: Lookup returns each key's payload directly.
	AlgoCHM AlgorithmID = AlgorithmID(algo.KindCHM)
	// AlgoBMZ allows cycles confined to a small 2-core; smaller tables than CHM.
	AlgoBMZ AlgorithmID = AlgorithmID(algo.KindBMZ)
	// AlgoBDZ2 peels a bipartite random graph.
	AlgoBDZ2 AlgorithmID = AlgorithmID(algo.KindBDZ2)
	// AlgoBDZ3 peels a 3-uniform hypergraph; the most compact variant.
	AlgoBDZ3 AlgorithmID = AlgorithmID(algo.KindBDZ3)
	// AlgoCHD hashes into buckets and displaces each with its own seed.
	AlgoCHD AlgorithmID = AlgorithmID(algo.KindCHD)
)

// Algorithms lists every algorithm in ID order.
var Algorithms = []AlgorithmID{AlgoCHM, AlgoBMZ, AlgoBDZ2, AlgoBDZ3, AlgoCHD}

// String returns the algorithm's short name.
func (a AlgorithmID) String() string {
	return algo.Kind(a).String()
}

// ParseAlgorithm returns the algorithm with the given short name.
func ParseAlgorithm(name string) (AlgorithmID, error) {
	k, err := algo.ParseKind(name)
	return AlgorithmID(k), err
}

// OrderPreserving reports whether Lookup returns payloads rather than
// indices.
func (a AlgorithmID) OrderPreserving() bool {
	return a == AlgoCHM
}

// HashFamily selects the seeded hash used by the BDZ and CHD variants.
// CHM and BMZ always use their multiply-sum hashes.
type HashFamily uint8

const (
	// HashOneAtATime is Jenkins' one-at-a-time hash.
	HashOneAtATime HashFamily = HashFamily(hashfn.FamilyOneAtATime)
	// HashMurmur3 is 32-bit MurmurHash3.
	HashMurmur3 HashFamily = HashFamily(hashfn.FamilyMurmur3)
	// HashXXH3 is XXH3-64 folded to 32 bits.
	HashXXH3 HashFamily = HashFamily(hashfn.FamilyXXH3)
)

// String returns the family name.
func (h HashFamily) String() string {
	return hashfn.Family(h).String()
}

// ParseHashFamily returns the seeded family with the given name.
func ParseHashFamily(name string) (HashFamily, error) {
	for _, h := range []HashFamily{HashOneAtATime, HashMurmur3, HashXXH3} {
		if h.String() == name {
			return h, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", pherrors.ErrUnknownHash, name)
}

// newAlgorithm creates the construction algorithm for cfg.
func newAlgorithm(cfg *buildConfig) (algo.Algorithm, error) {
	return algo.New(algo.Kind(cfg.algorithm), algo.Config{
		PrimeRounds:      cfg.primeRounds,
		HashFamily:       hashfn.Family(cfg.hashFamily),
		CHDBuckets:       cfg.chdBuckets,
		CHDBucketRetries: cfg.chdBucketRetries,
		Logger:           cfg.logger,
	})
}
