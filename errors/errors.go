// Package errors defines all exported error sentinels for the perfecthash library.
//
// This is the single source of truth for error values. Both the top-level
// perfecthash package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Input errors
var (
	ErrEmptyKeySet  = errors.New("perfecthash: cannot build function with zero keys")
	ErrDuplicateKey = errors.New("perfecthash: duplicate key")
	ErrZeroByteKey  = errors.New("perfecthash: key contains a zero byte")
	ErrTooManyKeys  = errors.New("perfecthash: key count exceeds 32-bit addressing")
)

// Dataset errors
var (
	ErrMalformedDataset = errors.New("perfecthash: dataset must be a JSON array or object")
	ErrNonStringKey     = errors.New("perfecthash: dataset key is not a string")
	ErrInvalidValue     = errors.New("perfecthash: dataset value is not a non-negative integer")
)

// Construction errors
var (
	ErrTooManyElements  = errors.New("perfecthash: too many elements")
	ErrUnknownAlgorithm = errors.New("perfecthash: unknown algorithm")
	ErrUnknownHash      = errors.New("perfecthash: unknown hash family")
	ErrInvalidOption    = errors.New("perfecthash: invalid option")

	// ErrTrialsExhausted reports that every trial at a given table size
	// failed. Build treats it as a signal to grow the table; it is never
	// returned to callers of Build.
	ErrTrialsExhausted = errors.New("perfecthash: trial budget exhausted")
)

// Internal errors. These indicate a defect: an acceptance test upstream of
// the failing code path let through a structure it should have rejected.
var (
	ErrInternal     = errors.New("perfecthash: internal invariant violated")
	ErrInvalidIndex = errors.New("perfecthash: node index out of range")
	ErrNotIncident  = errors.New("perfecthash: edge is not incident to node")
)

// Function file errors
var (
	ErrInvalidMagic      = errors.New("perfecthash: invalid magic number")
	ErrInvalidVersion    = errors.New("perfecthash: unsupported version")
	ErrTruncatedFile     = errors.New("perfecthash: function file is truncated")
	ErrChecksumFailed    = errors.New("perfecthash: checksum verification failed")
	ErrCorruptedFunction = errors.New("perfecthash: function data is corrupted")
)

// Query errors
var (
	ErrClosed     = errors.New("perfecthash: function is closed")
	ErrKeyTooLong = errors.New("perfecthash: key is longer than any key in the build set")
	ErrNotFound   = errors.New("perfecthash: key not found")
)
