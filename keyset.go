package perfecthash

import (
	"fmt"
	"iter"
	"math"
	"strings"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/algo"
)

// KeySet is an ordered set of unique keys, each with a 64-bit payload.
// Insertion order is kept so that a build with a fixed seed is
// reproducible.
type KeySet struct {
	entries []algo.Entry
	index   map[string]int
	maxLen  int
}

// NewKeySet returns an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{index: make(map[string]int)}
}

// KeySetFromList assigns sequential payloads 0..len(keys)-1.
func KeySetFromList(keys []string) (*KeySet, error) {
	ks := NewKeySet()
	for i, k := range keys {
		if err := ks.Add(k, uint64(i)); err != nil {
			return nil, err
		}
	}
	return ks, nil
}

// Add inserts key with the given payload. Duplicate keys and keys
// containing a zero byte are rejected.
func (ks *KeySet) Add(key string, value uint64) error {
	if strings.IndexByte(key, 0) >= 0 {
		return fmt.Errorf("%w: %q", pherrors.ErrZeroByteKey, key)
	}
	if _, dup := ks.index[key]; dup {
		return fmt.Errorf("%w: %q", pherrors.ErrDuplicateKey, key)
	}
	if len(ks.entries) == math.MaxUint32 {
		return pherrors.ErrTooManyKeys
	}
	ks.index[key] = len(ks.entries)
	ks.entries = append(ks.entries, algo.Entry{Key: key, Value: value})
	ks.maxLen = max(ks.maxLen, len(key))
	return nil
}

// Len returns the number of keys.
func (ks *KeySet) Len() int { return len(ks.entries) }

// MaxLen returns the length of the longest key.
func (ks *KeySet) MaxLen() int { return ks.maxLen }

// Value returns the payload stored for key.
func (ks *KeySet) Value(key string) (uint64, bool) {
	i, ok := ks.index[key]
	if !ok {
		return 0, false
	}
	return ks.entries[i].Value, true
}

// All yields keys and payloads in insertion order.
func (ks *KeySet) All() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		for _, e := range ks.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (ks *KeySet) input() *algo.Input {
	return &algo.Input{Entries: ks.entries, MaxLen: ks.maxLen}
}
