// Package encoding packs the fixed-width tables of a function file:
// little-endian integer arrays and 2-bit digit arrays.
package encoding

import "encoding/binary"

// DigitsSize returns the bytes needed for n 2-bit digits.
func DigitsSize(n int) int {
	return (n + 3) / 4
}

// PackDigits stores each digit (0-3) in two bits, four per byte, lowest
// index in the low bits. dst must hold DigitsSize(len(digits)) bytes.
func PackDigits(dst []byte, digits []uint8) {
	dst = dst[:DigitsSize(len(digits))]
	clear(dst)
	for i, d := range digits {
		dst[i/4] |= (d & 3) << (2 * (i % 4))
	}
}

// UnpackDigits is the inverse of PackDigits; len(dst) digits are read.
func UnpackDigits(dst []uint8, src []byte) {
	for i := range dst {
		dst[i] = src[i/4] >> (2 * (i % 4)) & 3
	}
}

// PutUint64s writes src as consecutive little-endian words.
func PutUint64s(dst []byte, src []uint64) {
	for i, v := range src {
		binary.LittleEndian.PutUint64(dst[8*i:], v)
	}
}

// Uint64s reads len(dst) little-endian words from src.
func Uint64s(dst []uint64, src []byte) {
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(src[8*i:])
	}
}

// PutUint32s writes src as consecutive little-endian 32-bit values.
func PutUint32s(dst []byte, src []uint32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], v)
	}
}

// Uint32s reads len(dst) little-endian 32-bit values from src.
func Uint32s(dst []uint32, src []byte) {
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(src[4*i:])
	}
}
