package hashfn

import (
	"encoding/binary"
	"fmt"

	pherrors "github.com/tamirms/perfecthash/errors"
)

// specHeaderSize is the fixed part of an encoded Spec.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       1     Family    uint8
//	1       1     Pre       uint8
//	2       2     Reserved  zero
//	4       4     Seed      uint32_le
//	8       4     Factor    uint32_le
//	12      4     TableLen  uint32_le
//	16      4*N   Table     []uint32_le
const specHeaderSize = 16

// Spec is a frozen description of a hash function's parameters.
type Spec struct {
	Family Family
	Pre    PreKind
	Seed   uint32
	Factor uint32
	Table  []uint32
}

func newSpec(f Family, pre Preprocessor, seed, factor uint32) Spec {
	var table []uint32
	if t := pre.table(); t != nil {
		table = append([]uint32(nil), t...)
	}
	return Spec{Family: f, Pre: pre.kind(), Seed: seed, Factor: factor, Table: table}
}

func unknownFamily(f Family) error {
	return fmt.Errorf("%w: %d", pherrors.ErrUnknownHash, f)
}

// Func rebuilds the hash function described by s. The result hashes exactly
// like the function s was taken from; Randomize on it is a no-op.
func (s Spec) Func() (Func, error) {
	var pre Preprocessor
	switch s.Pre {
	case PreNone:
		pre = None{}
	case PreMult:
		pre = &Mult{tablePre{words: append([]uint32(nil), s.Table...)}}
	case PreXOR:
		pre = &XOR{tablePre{words: append([]uint32(nil), s.Table...)}}
	default:
		return nil, fmt.Errorf("%w: preprocessor %d", pherrors.ErrUnknownHash, s.Pre)
	}

	switch s.Family {
	case FamilyMultSum:
		return &MultSum{pre: pre, seed: s.Seed, factor: s.Factor}, nil
	case FamilyOneAtATime:
		return &OneAtATime{pre: pre, seed: s.Seed}, nil
	case FamilyMurmur3:
		return &Murmur3{seed: s.Seed}, nil
	case FamilyXXH3:
		return &XXH3{seed: s.Seed}, nil
	}
	return nil, unknownFamily(s.Family)
}

// EncodedSize returns the number of bytes AppendBinary writes.
func (s Spec) EncodedSize() int {
	return specHeaderSize + 4*len(s.Table)
}

// AppendBinary appends the little-endian encoding of s to dst.
func (s Spec) AppendBinary(dst []byte) []byte {
	dst = append(dst, byte(s.Family), byte(s.Pre), 0, 0)
	dst = binary.LittleEndian.AppendUint32(dst, s.Seed)
	dst = binary.LittleEndian.AppendUint32(dst, s.Factor)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s.Table)))
	for _, w := range s.Table {
		dst = binary.LittleEndian.AppendUint32(dst, w)
	}
	return dst
}

// DecodeSpec parses one Spec from the front of buf and returns the number
// of bytes consumed.
func DecodeSpec(buf []byte) (Spec, int, error) {
	if len(buf) < specHeaderSize {
		return Spec{}, 0, pherrors.ErrTruncatedFile
	}
	s := Spec{
		Family: Family(buf[0]),
		Pre:    PreKind(buf[1]),
		Seed:   binary.LittleEndian.Uint32(buf[4:8]),
		Factor: binary.LittleEndian.Uint32(buf[8:12]),
	}
	n := binary.LittleEndian.Uint32(buf[12:16])
	if uint64(n)*4 > uint64(len(buf)-specHeaderSize) {
		return Spec{}, 0, pherrors.ErrTruncatedFile
	}
	if n > 0 {
		s.Table = make([]uint32, n)
		for i := range s.Table {
			off := specHeaderSize + 4*i
			s.Table[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		}
	}
	return s, s.EncodedSize(), nil
}
