package algo

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/bits"
	"github.com/tamirms/perfecthash/internal/hashfn"
	"github.com/tamirms/perfecthash/internal/randsrc"
)

const (
	defaultCHDBuckets       = 313
	defaultCHDBucketRetries = 1000
)

// CHD hashes keys into buckets and places the buckets, largest first, by
// searching for a per-bucket seed that sends every key of the bucket to a
// distinct free slot in [0, n).
type CHD struct {
	family  hashfn.Family
	buckets int
	retries int
	log     *zap.Logger
}

// Kind returns KindCHD.
func (*CHD) Kind() Kind { return KindCHD }

// LoadFactor returns 1.02.
func (*CHD) LoadFactor() float64 { return 1.02 }

// GrowthRate returns 1.05.
func (*CHD) GrowthRate() float64 { return 1.05 }

// Run attempts up to trials bucket assignments for a table of size n.
func (c *CHD) Run(rng *rand.Rand, in *Input, n uint32, trials int) (res *Result, err error) {
	defer guard(&err)
	m := len(in.Entries)
	if n == 0 || uint64(n) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: table size %d", pherrors.ErrInvalidOption, n)
	}

	seeds := randsrc.NewRange(rng, 0, math.MaxUint32)
	h1, err := hashfn.NewSeeded(c.family, seeds)
	if err != nil {
		return nil, err
	}
	s := &chdSolver{
		family:       c.family,
		n:            n,
		retries:      c.retries,
		seeds:        seeds,
		bucketOf:     make([]uint32, m),
		bucketStarts: make([]int, c.buckets+1),
		keys:         make([]string, m),
		order:        make([]int, c.buckets),
		bucketSeeds:  make([]uint32, c.buckets),
		taken:        make([]bool, n),
		slotGen:      make([]uint32, n),
		slots:        make([]uint32, 0, 16),
	}

	t := newTrials(trials, c.log)
	err = t.run(nil, func(int) (rejectReason, error) {
		h1.Randomize()
		for i, e := range in.Entries {
			s.bucketOf[i] = h1.Hash(e.Key) % uint32(c.buckets)
		}
		s.group(in.Entries)
		return s.place(), nil
	})
	if err != nil {
		return nil, err
	}

	used := bits.NewRankVector(int(n))
	for slot, taken := range s.taken {
		if taken {
			used.Set(slot)
		}
	}
	used.Freeze()
	res = &Result{
		Kind:       KindCHD,
		N:          n,
		NumKeys:    m,
		Hashes:     []hashfn.Spec{h1.Spec()},
		Used:       used,
		Seeds:      s.bucketSeeds,
		SeedFamily: c.family,
		Trials:     t.attempts,
	}
	if err := res.Prepare(); err != nil {
		return nil, err
	}
	return res, nil
}

type chdSolver struct {
	family  hashfn.Family
	n       uint32
	retries int
	seeds   randsrc.Source

	bucketOf []uint32
	// bucketStarts[b]..bucketStarts[b+1] indexes keys of bucket b in keys.
	bucketStarts []int
	keys         []string
	order        []int
	sortCounts   []int
	sortPos      []int

	bucketSeeds []uint32
	taken       []bool
	// slotGen stamps slots claimed by the candidate seed being tested, so
	// the intra-bucket check needs no clearing between candidates.
	slotGen []uint32
	gen     uint32
	slots   []uint32
}

// group lays the keys out bucket by bucket and orders buckets by size,
// largest first.
func (s *chdSolver) group(entries []Entry) {
	clear(s.bucketStarts)
	for _, b := range s.bucketOf {
		s.bucketStarts[b+1]++
	}
	for b := 1; b < len(s.bucketStarts); b++ {
		s.bucketStarts[b] += s.bucketStarts[b-1]
	}
	fill := slices.Clone(s.bucketStarts[:len(s.bucketStarts)-1])
	for i, b := range s.bucketOf {
		s.keys[fill[b]] = entries[i].Key
		fill[b]++
	}
	s.sortCounts, s.sortPos = countingSortBuckets(s.bucketStarts, s.order, s.sortCounts, s.sortPos)
}

// place assigns a seed to every bucket in order. It returns rejectBucket
// if some bucket exhausts its retries.
func (s *chdSolver) place() rejectReason {
	clear(s.taken)
	clear(s.bucketSeeds)
	for _, b := range s.order {
		keys := s.keys[s.bucketStarts[b]:s.bucketStarts[b+1]]
		if len(keys) == 0 {
			continue
		}
		placed := false
		for range s.retries {
			seed := s.seeds.Get()
			if s.try(keys, seed) {
				s.bucketSeeds[b] = seed
				for _, slot := range s.slots {
					s.taken[slot] = true
				}
				placed = true
				break
			}
		}
		if !placed {
			return rejectBucket
		}
	}
	return accepted
}

// try reports whether seed sends every key to a distinct untaken slot,
// leaving the slots in s.slots.
func (s *chdSolver) try(keys []string, seed uint32) bool {
	s.gen++
	if s.gen == 0 {
		clear(s.slotGen)
		s.gen = 1
	}
	s.slots = s.slots[:0]
	for _, k := range keys {
		slot := hashfn.HashWithSeed(s.family, seed, k) % s.n
		if s.taken[slot] || s.slotGen[slot] == s.gen {
			return false
		}
		s.slotGen[slot] = s.gen
		s.slots = append(s.slots, slot)
	}
	return true
}

// countingSortBuckets writes bucket indices into result ordered by size,
// largest first, ties in index order. counts and positions are scratch
// buffers, grown and returned for reuse.
func countingSortBuckets(bucketStarts []int, result []int, counts, positions []int) ([]int, []int) {
	n := len(bucketStarts) - 1
	if n <= 0 {
		return counts, positions
	}

	maxSize := 0
	for i := range n {
		maxSize = max(maxSize, bucketStarts[i+1]-bucketStarts[i])
	}
	if cap(counts) < maxSize+1 {
		counts = make([]int, maxSize+1)
		positions = make([]int, maxSize+1)
	}
	counts, positions = counts[:maxSize+1], positions[:maxSize+1]
	clear(counts)

	for i := range n {
		counts[bucketStarts[i+1]-bucketStarts[i]]++
	}

	// Reverse order for largest first.
	pos := 0
	for size := maxSize; size >= 0; size-- {
		positions[size] = pos
		pos += counts[size]
	}

	for i := range n {
		size := bucketStarts[i+1] - bucketStarts[i]
		result[positions[size]] = i
		positions[size]++
	}
	return counts, positions
}
