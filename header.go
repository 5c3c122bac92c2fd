package perfecthash

import (
	"encoding/binary"

	pherrors "github.com/tamirms/perfecthash/errors"
)

const (
	// magic number for function files, "MPHF" in little-endian
	magic = uint32(0x4648504D)

	// version is the current format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (64 bytes)
	headerSize = 64

	// footerSize is the exact size of the serialized footer (32 bytes)
	footerSize = 32

	// payloadSize is the width of a stored payload.
	payloadSize = 8
)

// header is the 64-byte file header.
//
// Layout:
//
//	Offset  Size  Field        Type
//	0       4     Magic        0x4648504D ("MPHF")
//	4       2     Version      0x0001
//	6       1     Algorithm    uint8 (0=CHM, 1=BMZ, 2=BDZ2, 3=BDZ3, 4=CHD)
//	7       1     SeedFamily   uint8 (CHD second-level hash family)
//	8       8     NumKeys      uint64_le
//	16      4     N            uint32_le (table size)
//	20      4     NumHashes    uint32_le
//	24      4     NumBuckets   uint32_le (CHD only)
//	28      1     PayloadSize  uint8 (0 or 8)
//	29      35    Reserved     [35]byte (zero)
//
// The body follows: NumHashes encoded hash specs, the algorithm's node
// tables, zero padding to an 8-byte boundary, then NumKeys payloads when
// PayloadSize is 8.
type header struct {
	Magic       uint32
	Version     uint16
	Algorithm   AlgorithmID
	SeedFamily  uint8
	NumKeys     uint64
	N           uint32
	NumHashes   uint32
	NumBuckets  uint32
	PayloadSize uint8
	Reserved    [35]byte
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = byte(h.Algorithm)
	buf[7] = h.SeedFamily
	binary.LittleEndian.PutUint64(buf[8:16], h.NumKeys)
	binary.LittleEndian.PutUint32(buf[16:20], h.N)
	binary.LittleEndian.PutUint32(buf[20:24], h.NumHashes)
	binary.LittleEndian.PutUint32(buf[24:28], h.NumBuckets)
	buf[28] = h.PayloadSize
	copy(buf[29:64], h.Reserved[:])
}

// decodeHeader parses a 64-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, pherrors.ErrTruncatedFile
	}

	h := &header{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		Algorithm:   AlgorithmID(buf[6]),
		SeedFamily:  buf[7],
		NumKeys:     binary.LittleEndian.Uint64(buf[8:16]),
		N:           binary.LittleEndian.Uint32(buf[16:20]),
		NumHashes:   binary.LittleEndian.Uint32(buf[20:24]),
		NumBuckets:  binary.LittleEndian.Uint32(buf[24:28]),
		PayloadSize: buf[28],
	}
	copy(h.Reserved[:], buf[29:64])

	if h.Magic != magic {
		return nil, pherrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, pherrors.ErrInvalidVersion
	}
	if int(h.Algorithm) >= len(Algorithms) {
		return nil, pherrors.ErrUnknownAlgorithm
	}
	if h.PayloadSize != 0 && h.PayloadSize != payloadSize {
		return nil, pherrors.ErrCorruptedFunction
	}
	if h.NumKeys == 0 || h.N == 0 {
		return nil, pherrors.ErrCorruptedFunction
	}
	return h, nil
}

// footer is the 32-byte file footer.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       8     BodyHash  uint64_le (xxHash64 of header and body)
//	8       8     BodySize  uint64_le (bytes before the footer)
//	16      16    Reserved  [16]byte (zero)
type footer struct {
	BodyHash uint64
	BodySize uint64
	Reserved [16]byte
}

// encodeTo serializes the footer into an existing buffer.
func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.BodyHash)
	binary.LittleEndian.PutUint64(buf[8:16], f.BodySize)
	copy(buf[16:32], f.Reserved[:])
}

// decodeFooter parses a 32-byte footer.
func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, pherrors.ErrTruncatedFile
	}

	f := &footer{
		BodyHash: binary.LittleEndian.Uint64(buf[0:8]),
		BodySize: binary.LittleEndian.Uint64(buf[8:16]),
	}
	copy(f.Reserved[:], buf[16:32])

	return f, nil
}
