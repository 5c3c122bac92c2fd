package hashfn

import (
	"fmt"

	"github.com/tamirms/perfecthash/internal/randsrc"
)

// PreKind identifies a per-position character transform.
type PreKind uint8

const (
	// PreNone passes characters through unchanged.
	PreNone PreKind = iota
	// PreMult multiplies each character by a per-position random factor.
	PreMult
	// PreXOR XORs each character with a per-position random mask.
	PreXOR
)

// String returns the transform name.
func (k PreKind) String() string {
	switch k {
	case PreNone:
		return "none"
	case PreMult:
		return "mult"
	case PreXOR:
		return "xor"
	default:
		return "unknown"
	}
}

// Preprocessor transforms the character at position i of a key before it is
// folded into a hash.
type Preprocessor interface {
	Preprocess(i int, c byte) uint32
	// Randomize redraws all per-position state.
	Randomize()
	// MaxLen is the longest key the preprocessor accepts, or -1 for no limit.
	MaxLen() int
	kind() PreKind
	table() []uint32
}

// None is the identity preprocessor.
type None struct{}

// Preprocess returns c.
func (None) Preprocess(_ int, c byte) uint32 { return uint32(c) }

// Randomize is a no-op.
func (None) Randomize() {}

// MaxLen returns -1.
func (None) MaxLen() int { return -1 }

func (None) kind() PreKind    { return PreNone }
func (None) table() []uint32 { return nil }

// tablePre holds a table of maxLen random words, one per key position.
// A nil source marks a frozen table restored from a Spec.
type tablePre struct {
	words []uint32
	rs    randsrc.Source
}

func newTablePre(maxLen int, rs randsrc.Source, fill uint32) tablePre {
	words := make([]uint32, maxLen)
	for i := range words {
		words[i] = fill
	}
	return tablePre{words: words, rs: rs}
}

func (p *tablePre) Randomize() {
	if p.rs == nil {
		return
	}
	for i := range p.words {
		p.words[i] = p.rs.Get()
	}
}

func (p *tablePre) MaxLen() int { return len(p.words) }

func (p *tablePre) word(i int) uint32 {
	if i >= len(p.words) {
		panic(fmt.Sprintf("hashfn: position %d beyond table of %d entries", i, len(p.words)))
	}
	return p.words[i]
}

func (p *tablePre) table() []uint32 { return p.words }

// Mult multiplies each character by a random per-position factor.
type Mult struct{ tablePre }

// NewMult returns a Mult preprocessor for keys up to maxLen bytes. The table
// starts as all ones until the first Randomize.
func NewMult(maxLen int, rs randsrc.Source) *Mult {
	return &Mult{newTablePre(maxLen, rs, 1)}
}

// Preprocess returns table[i] * c.
func (p *Mult) Preprocess(i int, c byte) uint32 {
	return p.word(i) * uint32(c)
}

func (p *Mult) kind() PreKind { return PreMult }

// XOR masks each character with a random per-position word.
type XOR struct{ tablePre }

// NewXOR returns an XOR preprocessor for keys up to maxLen bytes. The table
// starts as all zeros until the first Randomize.
func NewXOR(maxLen int, rs randsrc.Source) *XOR {
	return &XOR{newTablePre(maxLen, rs, 0)}
}

// Preprocess returns table[i] ^ c.
func (p *XOR) Preprocess(i int, c byte) uint32 {
	return p.word(i) ^ uint32(c)
}

func (p *XOR) kind() PreKind { return PreXOR }
