package perfecthash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/algo"
	"github.com/tamirms/perfecthash/internal/hashfn"
)

// Function is a built or loaded minimal perfect hash function.
//
// Thread Safety:
// - Lookup, Value and the other read methods are safe for concurrent use
// - Close is NOT safe to call concurrently with lookups
// - After Close returns, lookups fail with ErrClosed
type Function struct {
	res       *algo.Result
	algorithm AlgorithmID

	// payloads holds one little-endian uint64 per index. It is nil for
	// order-preserving functions and points into the mapping after Open.
	payloads []byte

	// Memory map backing a function loaded with Open (nil otherwise).
	mmap mmap.MMap

	closed atomic.Bool
}

// Stats holds function statistics.
type Stats struct {
	Algorithm  AlgorithmID
	NumKeys    int
	N          uint32
	Size       int64
	BitsPerKey float64
	Trials     int
}

func newFunction(res *algo.Result, ks *KeySet) (*Function, error) {
	f := &Function{res: res, algorithm: AlgorithmID(res.Kind)}
	if f.algorithm.OrderPreserving() {
		return f, nil
	}

	m := ks.Len()
	f.payloads = make([]byte, m*payloadSize)
	seen := make([]bool, m)
	for _, e := range ks.entries {
		idx, err := res.Lookup(e.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", pherrors.ErrInternal, e.Key, err)
		}
		if idx >= uint64(m) || seen[idx] {
			return nil, fmt.Errorf("%w: key %q maps to index %d", pherrors.ErrInternal, e.Key, idx)
		}
		seen[idx] = true
		binary.LittleEndian.PutUint64(f.payloads[idx*payloadSize:], e.Value)
	}
	return f, nil
}

// Open loads a function file for querying.
// It opens the file, memory-maps it, and closes the file descriptor.
func Open(path string) (*Function, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open function file: %w", err)
	}
	defer file.Close()
	return OpenFile(file)
}

// OpenFile loads a function by memory-mapping the given file.
// The caller is responsible for closing file; it may be closed as soon as
// OpenFile returns.
func OpenFile(file *os.File) (*Function, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat function file: %w", err)
	}
	size := stat.Size()
	if size < headerSize+footerSize {
		return nil, pherrors.ErrTruncatedFile
	}

	// The checksum pass reads the whole file front to back.
	fadviseSequential(int(file.Fd()), 0, size)

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap function file: %w", err)
	}
	f, err := decodeFunction([]byte(mm))
	if err != nil {
		return nil, errors.Join(err, mm.Unmap())
	}
	f.mmap = mm
	return f, nil
}

// OpenBytes loads a function from an in-memory encoding.
// The caller must not modify data while the Function is in use.
func OpenBytes(data []byte) (*Function, error) {
	return decodeFunction(data)
}

// decodeFunction parses and validates an encoded function. Everything
// except the payload region is copied out of data.
func decodeFunction(data []byte) (*Function, error) {
	if len(data) < headerSize+footerSize {
		return nil, pherrors.ErrTruncatedFile
	}
	hdr, err := decodeHeader(data[:headerSize])
	if err != nil {
		return nil, err
	}
	ftr, err := decodeFooter(data[len(data)-footerSize:])
	if err != nil {
		return nil, err
	}
	body := uint64(len(data) - footerSize)
	if ftr.BodySize != body {
		return nil, fmt.Errorf("%w: footer records %d body bytes, file has %d", pherrors.ErrTruncatedFile, ftr.BodySize, body)
	}
	if xxhash.Sum64(data[:body]) != ftr.BodyHash {
		return nil, pherrors.ErrChecksumFailed
	}

	res := &algo.Result{
		Kind:       algo.Kind(hdr.Algorithm),
		N:          hdr.N,
		NumKeys:    int(hdr.NumKeys),
		SeedFamily: hashfn.Family(hdr.SeedFamily),
	}
	if hdr.NumKeys > uint64(hdr.N)*3 {
		return nil, fmt.Errorf("%w: %d keys for table size %d", pherrors.ErrCorruptedFunction, hdr.NumKeys, hdr.N)
	}
	off := headerSize
	for range hdr.NumHashes {
		s, n, err := hashfn.DecodeSpec(data[off:body])
		if err != nil {
			return nil, err
		}
		res.Hashes = append(res.Hashes, s)
		off += n
	}
	n, err := decodeTables(res, hdr, data[off:body])
	if err != nil {
		return nil, err
	}
	off = align8(off + n)

	f := &Function{res: res, algorithm: hdr.Algorithm}
	wantPayloads := !hdr.Algorithm.OrderPreserving()
	if wantPayloads != (hdr.PayloadSize == payloadSize) {
		return nil, fmt.Errorf("%w: payload size %d for %v", pherrors.ErrCorruptedFunction, hdr.PayloadSize, hdr.Algorithm)
	}
	if wantPayloads {
		end := uint64(off) + hdr.NumKeys*payloadSize
		if end > body {
			return nil, pherrors.ErrTruncatedFile
		}
		f.payloads = data[off:end]
		off = int(end)
	}
	if uint64(off) != body {
		return nil, fmt.Errorf("%w: %d trailing bytes", pherrors.ErrCorruptedFunction, body-uint64(off))
	}
	if err := res.Prepare(); err != nil {
		return nil, err
	}
	return f, nil
}

// Close releases the file mapping, if any.
func (f *Function) Close() error {
	if f.closed.Swap(true) {
		return nil // Already closed
	}
	if f.mmap != nil {
		return f.mmap.Unmap()
	}
	return nil
}

// Lookup evaluates the function at key. For AlgoCHM the result is the
// key's payload; for every other algorithm it is the key's index in
// [0, Len()). Keys outside the build set yield an arbitrary result or an
// error wrapping ErrNotFound.
func (f *Function) Lookup(key string) (uint64, error) {
	if f.closed.Load() {
		return 0, pherrors.ErrClosed
	}
	return f.res.Lookup(key)
}

// Value returns the payload of key. For AlgoCHM this is Lookup.
func (f *Function) Value(key string) (uint64, error) {
	v, err := f.Lookup(key)
	if err != nil || f.payloads == nil {
		return v, err
	}
	if v >= uint64(f.res.NumKeys) {
		return 0, pherrors.ErrNotFound
	}
	return binary.LittleEndian.Uint64(f.payloads[v*payloadSize:]), nil
}

// Verify re-evaluates every key of ks and checks that the function is a
// bijection from ks onto [0, Len()) returning each key's payload.
func (f *Function) Verify(ks *KeySet) error {
	if f.closed.Load() {
		return pherrors.ErrClosed
	}
	if ks.Len() != f.res.NumKeys {
		return fmt.Errorf("%w: function has %d keys, set has %d", pherrors.ErrCorruptedFunction, f.res.NumKeys, ks.Len())
	}
	seen := make([]bool, ks.Len())
	for _, e := range ks.entries {
		v, err := f.Value(e.Key)
		if err != nil {
			return fmt.Errorf("key %q: %w", e.Key, err)
		}
		if v != e.Value {
			return fmt.Errorf("%w: key %q has payload %d, want %d", pherrors.ErrCorruptedFunction, e.Key, v, e.Value)
		}
		if f.payloads == nil {
			continue
		}
		idx, _ := f.res.Lookup(e.Key)
		if seen[idx] {
			return fmt.Errorf("%w: index %d assigned twice", pherrors.ErrCorruptedFunction, idx)
		}
		seen[idx] = true
	}
	return nil
}

// Len returns the number of keys.
func (f *Function) Len() int { return f.res.NumKeys }

// N returns the table size the construction settled on.
func (f *Function) N() uint32 { return f.res.N }

// Algorithm returns the construction algorithm.
func (f *Function) Algorithm() AlgorithmID { return f.algorithm }

// Stats returns statistics for the function.
func (f *Function) Stats() *Stats {
	size := int64(f.layout().total)
	return &Stats{
		Algorithm:  f.algorithm,
		NumKeys:    f.res.NumKeys,
		N:          f.res.N,
		Size:       size,
		BitsPerKey: float64(size*8) / float64(f.res.NumKeys),
		Trials:     f.res.Trials,
	}
}
