package perfecthash

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	pherrors "github.com/tamirms/perfecthash/errors"
	"github.com/tamirms/perfecthash/internal/algo"
	"github.com/tamirms/perfecthash/internal/bits"
	"github.com/tamirms/perfecthash/internal/encoding"
)

// layout records the byte offsets of an encoded function.
// File layout: [Header 64B][Hash specs][Node tables][pad to 8][Payloads][Footer 32B]
type layout struct {
	tables   int
	payloads int
	footer   int
	total    int
}

func align8(n int) int {
	return (n + 7) &^ 7
}

func (f *Function) layout() layout {
	var l layout
	l.tables = headerSize
	for _, s := range f.res.Hashes {
		l.tables += s.EncodedSize()
	}
	l.payloads = align8(l.tables + tablesSize(f.res))
	l.footer = l.payloads + len(f.payloads)
	l.total = l.footer + footerSize
	return l
}

// tablesSize returns the encoded size of the algorithm's node tables.
//
//	CHM, BMZ:   N x uint64_le node values
//	BDZ2, BDZ3: kN 2-bit digits packed four per byte, then the used bitmap
//	CHD:        one uint32_le seed per bucket, then the used bitmap
func tablesSize(res *algo.Result) int {
	switch res.Kind {
	case algo.KindCHM, algo.KindBMZ:
		return 8 * len(res.Values)
	case algo.KindBDZ2, algo.KindBDZ3:
		return encoding.DigitsSize(len(res.Digits)) + 8*len(res.Used.Words())
	case algo.KindCHD:
		return 4*len(res.Seeds) + 8*len(res.Used.Words())
	}
	return 0
}

func encodeTables(res *algo.Result, buf []byte) {
	switch res.Kind {
	case algo.KindCHM, algo.KindBMZ:
		encoding.PutUint64s(buf, res.Values)
		return
	case algo.KindBDZ2, algo.KindBDZ3:
		encoding.PackDigits(buf, res.Digits)
		buf = buf[encoding.DigitsSize(len(res.Digits)):]
	case algo.KindCHD:
		encoding.PutUint32s(buf, res.Seeds)
		buf = buf[4*len(res.Seeds):]
	}
	encoding.PutUint64s(buf, res.Used.Words())
}

// decodeTables fills the node tables of res from buf and returns the
// number of bytes consumed.
func decodeTables(res *algo.Result, hdr *header, buf []byte) (int, error) {
	n := int(hdr.N)
	var nodes, off int
	switch res.Kind {
	case algo.KindCHM, algo.KindBMZ:
		if len(buf) < 8*n {
			return 0, pherrors.ErrTruncatedFile
		}
		res.Values = make([]uint64, n)
		encoding.Uint64s(res.Values, buf)
		return 8 * n, nil
	case algo.KindBDZ2, algo.KindBDZ3:
		nodes = 2 * n
		if res.Kind == algo.KindBDZ3 {
			nodes = 3 * n
		}
		off = encoding.DigitsSize(nodes)
		if len(buf) < off {
			return 0, pherrors.ErrTruncatedFile
		}
		res.Digits = make([]uint8, nodes)
		encoding.UnpackDigits(res.Digits, buf)
	case algo.KindCHD:
		nodes = n
		if uint64(len(buf)) < 4*uint64(hdr.NumBuckets) {
			return 0, pherrors.ErrTruncatedFile
		}
		off = 4 * int(hdr.NumBuckets)
		res.Seeds = make([]uint32, hdr.NumBuckets)
		encoding.Uint32s(res.Seeds, buf)
	default:
		return 0, pherrors.ErrUnknownAlgorithm
	}

	words := make([]uint64, (nodes+63)/64)
	if len(buf)-off < 8*len(words) {
		return 0, pherrors.ErrTruncatedFile
	}
	encoding.Uint64s(words, buf[off:])
	used, err := bits.FromWords(nodes, words)
	if err != nil {
		return 0, err
	}
	res.Used = used
	return off + 8*len(words), nil
}

// encodeInto writes the complete encoding, footer included, into buf,
// which must be exactly l.total bytes.
func (f *Function) encodeInto(buf []byte, l layout) {
	hdr := header{
		Magic:      magic,
		Version:    version,
		Algorithm:  f.algorithm,
		SeedFamily: uint8(f.res.SeedFamily),
		NumKeys:    uint64(f.res.NumKeys),
		N:          f.res.N,
		NumHashes:  uint32(len(f.res.Hashes)),
		NumBuckets: uint32(len(f.res.Seeds)),
	}
	if f.payloads != nil {
		hdr.PayloadSize = payloadSize
	}
	hdr.encodeTo(buf[:headerSize])

	// Appends in place: the empty slice keeps the capacity of buf.
	specs := buf[headerSize:headerSize]
	for _, s := range f.res.Hashes {
		specs = s.AppendBinary(specs)
	}
	encodeTables(f.res, buf[l.tables:l.payloads])
	clear(buf[l.tables+tablesSize(f.res) : l.payloads])
	copy(buf[l.payloads:l.footer], f.payloads)

	ftr := footer{
		BodyHash: xxhash.Sum64(buf[:l.footer]),
		BodySize: uint64(l.footer),
	}
	ftr.encodeTo(buf[l.footer:])
}

// MarshalBinary returns the file encoding of f.
func (f *Function) MarshalBinary() ([]byte, error) {
	if f.closed.Load() {
		return nil, pherrors.ErrClosed
	}
	l := f.layout()
	buf := make([]byte, l.total)
	f.encodeInto(buf, l)
	return buf, nil
}

// WriteTo writes the file encoding of f to w.
func (f *Function) WriteTo(w io.Writer) (int64, error) {
	buf, err := f.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// Save writes f to path using an mmap-based zero-copy write. The file is
// pre-allocated to its exact size first so a full disk surfaces as an
// error rather than SIGBUS.
func (f *Function) Save(path string) error {
	if f.closed.Load() {
		return pherrors.ErrClosed
	}
	l := f.layout()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create function file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := fallocateFile(file, int64(l.total)); err != nil {
		primaryErr := fmt.Errorf("failed to allocate disk space: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}

	mm, err := mmap.MapRegion(file, l.total, mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("failed to mmap file: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}
	prefaultRegion(mm)

	f.encodeInto(mm, l)

	// Flush dirty pages to file (ensures writes visible before unmap)
	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close(), os.Remove(path))
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}
	return file.Close()
}
