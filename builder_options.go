package perfecthash

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/tamirms/perfecthash/internal/primes"
)

const (
	defaultTrials           = 100
	defaultCHDBuckets       = 313
	defaultCHDBucketRetries = 1000

	// Arbitrary defaults; overridden via WithSeed.
	defaultSeed1 = 0x1234567890abcdef
	defaultSeed2 = 0xfedcba0987654321
)

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	algorithm        AlgorithmID
	trials           int
	rng              *rand.Rand
	seed1, seed2     uint64
	primeRounds      int
	hashFamily       HashFamily
	chdBuckets       int
	chdBucketRetries int
	logger           *zap.Logger
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		algorithm:        AlgoCHM,
		trials:           defaultTrials,
		seed1:            defaultSeed1,
		seed2:            defaultSeed2,
		primeRounds:      primes.DefaultRounds,
		hashFamily:       HashOneAtATime,
		chdBuckets:       defaultCHDBuckets,
		chdBucketRetries: defaultCHDBucketRetries,
		logger:           zap.NewNop(),
	}
}

// WithAlgorithm sets the construction algorithm.
// Default is AlgoCHM.
func WithAlgorithm(a AlgorithmID) BuildOption {
	return func(c *buildConfig) {
		c.algorithm = a
	}
}

// WithTrials sets how many randomized trials are attempted at each table
// size before the table grows.
func WithTrials(n int) BuildOption {
	return func(c *buildConfig) {
		c.trials = n
	}
}

// WithSeed seeds the PCG generator all randomness is drawn from. Builds
// with the same key set, options and seed produce identical functions.
func WithSeed(seed1, seed2 uint64) BuildOption {
	return func(c *buildConfig) {
		c.seed1, c.seed2 = seed1, seed2
		c.rng = nil
	}
}

// WithRand draws all randomness from rng instead of a seeded PCG. The
// generator is advanced by the build and must not be shared with
// concurrent builds.
func WithRand(rng *rand.Rand) BuildOption {
	return func(c *buildConfig) {
		c.rng = rng
	}
}

// WithPrimeRounds sets the number of Miller-Rabin rounds used to pick
// prime table sizes.
func WithPrimeRounds(n int) BuildOption {
	return func(c *buildConfig) {
		c.primeRounds = n
	}
}

// WithHashFamily selects the seeded hash for AlgoBDZ2, AlgoBDZ3 and AlgoCHD.
func WithHashFamily(h HashFamily) BuildOption {
	return func(c *buildConfig) {
		c.hashFamily = h
	}
}

// WithCHDBuckets sets the CHD bucket count.
func WithCHDBuckets(n int) BuildOption {
	return func(c *buildConfig) {
		c.chdBuckets = n
	}
}

// WithCHDBucketRetries sets how many seeds CHD tries per bucket before
// abandoning a trial.
func WithCHDBucketRetries(n int) BuildOption {
	return func(c *buildConfig) {
		c.chdBucketRetries = n
	}
}

// WithLogger sets the logger for build progress. Size iterations are
// logged at Info, rejected trials at Debug.
func WithLogger(l *zap.Logger) BuildOption {
	return func(c *buildConfig) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}
