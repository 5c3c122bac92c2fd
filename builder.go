package perfecthash

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/algo"
	"github.com/tamirms/perfecthash/internal/primes"
)

// Build constructs a minimal perfect hash function for ks.
//
// The table size n starts at the algorithm's load factor times the key
// count, rounded up to a prime, and grows geometrically whenever every
// trial at the current size fails. ctx is checked between sizes; a trial
// in progress is not interrupted.
//
// Usage:
//
//	ks := perfecthash.NewKeySet()
//	for key, v := range data {
//	    if err := ks.Add(key, v); err != nil { return err }
//	}
//	fn, err := perfecthash.Build(ctx, ks, perfecthash.WithAlgorithm(perfecthash.AlgoBDZ3))
//	if err != nil { return err }
//	return fn.Save("keys.mph")
func Build(ctx context.Context, ks *KeySet, opts ...BuildOption) (*Function, error) {
	if ks == nil || ks.Len() == 0 {
		return nil, pherrors.ErrEmptyKeySet
	}

	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.trials <= 0 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", pherrors.ErrInvalidOption, cfg.trials)
	}
	if cfg.primeRounds <= 0 {
		return nil, fmt.Errorf("%w: prime rounds must be positive, got %d", pherrors.ErrInvalidOption, cfg.primeRounds)
	}

	a, err := newAlgorithm(cfg)
	if err != nil {
		return nil, err
	}
	rng := cfg.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(cfg.seed1, cfg.seed2))
	}

	res, err := search(ctx, a, ks.input(), rng, cfg)
	if err != nil {
		return nil, err
	}
	return newFunction(res, ks)
}

// search runs the size search: each iteration picks the next prime table
// size above the previous one and gives the algorithm a full trial budget
// at that size.
func search(ctx context.Context, a algo.Algorithm, in *algo.Input, rng *rand.Rand, cfg *buildConfig) (*algo.Result, error) {
	m := len(in.Entries)
	log := cfg.logger.With(zap.Stringer("algorithm", a.Kind()), zap.Int("m", m))

	factor := a.LoadFactor()
	floor := uint32(2)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		want := float64(m)*factor + 0.5
		factor *= a.GrowthRate()
		if want > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d keys", pherrors.ErrTooManyElements, m)
		}
		n, ok := primes.NextPrime(uint32(want), cfg.primeRounds, rng)
		if !ok || n == math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d keys", pherrors.ErrTooManyElements, m)
		}
		if n < floor {
			continue
		}
		floor = n + 1

		log.Info("trying table size", zap.Uint32("n", n), zap.Float64("factor", float64(n)/float64(m)))
		res, err := a.Run(rng, in, n, cfg.trials)
		if err == nil {
			log.Info("built function", zap.Uint32("n", n), zap.Int("trials", res.Trials))
			return res, nil
		}
		if !errors.Is(err, pherrors.ErrTrialsExhausted) {
			return nil, err
		}
		log.Debug("table size infeasible", zap.Uint32("n", n), zap.Error(err))
	}
}
