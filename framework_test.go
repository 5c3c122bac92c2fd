package perfecthash

import (
	"errors"
	"testing"

	pherrors "github.com/tamirms/perfecthash/errors"
)

// =============================================================================
// KeySet tests
// =============================================================================

func TestKeySetRejectsDuplicates(t *testing.T) {
	ks := NewKeySet()
	if err := ks.Add("a", 0); err != nil {
		t.Fatal(err)
	}
	if err := ks.Add("a", 1); !errors.Is(err, pherrors.ErrDuplicateKey) {
		t.Errorf("second Add(a) = %v, want ErrDuplicateKey", err)
	}
	if ks.Len() != 1 {
		t.Errorf("Len = %d after rejected duplicate", ks.Len())
	}
	if v, _ := ks.Value("a"); v != 0 {
		t.Errorf("duplicate overwrote payload: %d", v)
	}

	if _, err := KeySetFromList([]string{"x", "y", "x"}); !errors.Is(err, pherrors.ErrDuplicateKey) {
		t.Errorf("KeySetFromList with duplicate: %v", err)
	}
}

func TestKeySetRejectsZeroByte(t *testing.T) {
	ks := NewKeySet()
	if err := ks.Add("ab\x00c", 0); !errors.Is(err, pherrors.ErrZeroByteKey) {
		t.Errorf("Add with zero byte = %v, want ErrZeroByteKey", err)
	}
}

func TestKeySetOrderAndMaxLen(t *testing.T) {
	ks, err := KeySetFromList([]string{"bb", "a", "cccc"})
	if err != nil {
		t.Fatal(err)
	}
	if ks.MaxLen() != 4 {
		t.Errorf("MaxLen = %d, want 4", ks.MaxLen())
	}
	var keys []string
	var values []uint64
	for k, v := range ks.All() {
		keys = append(keys, k)
		values = append(values, v)
	}
	if len(keys) != 3 || keys[0] != "bb" || keys[2] != "cccc" || values[2] != 2 {
		t.Errorf("All() = %v %v", keys, values)
	}
}

// =============================================================================
// Algorithm and hash family names
// =============================================================================

func TestAlgorithmString(t *testing.T) {
	want := map[AlgorithmID]string{
		AlgoCHM:  "chm",
		AlgoBMZ:  "bmz",
		AlgoBDZ2: "bdz2",
		AlgoBDZ3: "bdz3",
		AlgoCHD:  "chd",
	}
	for a, name := range want {
		if a.String() != name {
			t.Errorf("%d.String() = %q, want %q", a, a.String(), name)
		}
		got, err := ParseAlgorithm(name)
		if err != nil || got != a {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseAlgorithm("fch"); !errors.Is(err, pherrors.ErrUnknownAlgorithm) {
		t.Errorf("ParseAlgorithm(fch): %v", err)
	}
}

func TestParseHashFamily(t *testing.T) {
	for _, h := range []HashFamily{HashOneAtATime, HashMurmur3, HashXXH3} {
		got, err := ParseHashFamily(h.String())
		if err != nil || got != h {
			t.Errorf("ParseHashFamily(%q) = %v, %v", h, got, err)
		}
	}
	if _, err := ParseHashFamily("multsum"); !errors.Is(err, pherrors.ErrUnknownHash) {
		t.Errorf("ParseHashFamily(multsum): %v", err)
	}
}

// =============================================================================
// Header and footer tests
// =============================================================================

func TestHeaderRoundtrip(t *testing.T) {
	rng := newTestRNG(t)
	const iterations = 1000

	buf := make([]byte, headerSize)

	for i := range iterations {
		h := header{
			Magic:      magic,
			Version:    version,
			Algorithm:  Algorithms[rng.IntN(len(Algorithms))],
			SeedFamily: uint8(rng.IntN(4)),
			NumKeys:    rng.Uint64N(1<<40) + 1,
			N:          rng.Uint32() | 1,
			NumHashes:  uint32(rng.IntN(4)),
			NumBuckets: rng.Uint32(),
		}
		if rng.IntN(2) == 0 {
			h.PayloadSize = payloadSize
		}

		h.encodeTo(buf)
		got, err := decodeHeader(buf)
		if err != nil {
			t.Fatalf("iter %d: decodeHeader failed: %v", i, err)
		}
		if *got != h {
			t.Fatalf("iter %d: got %+v, want %+v", i, *got, h)
		}
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	valid := header{Magic: magic, Version: version, NumKeys: 1, N: 2}
	tests := []struct {
		name   string
		mutate func(*header)
		want   error
	}{
		{"magic", func(h *header) { h.Magic = 0x53544D48 }, pherrors.ErrInvalidMagic},
		{"version", func(h *header) { h.Version = 2 }, pherrors.ErrInvalidVersion},
		{"algorithm", func(h *header) { h.Algorithm = 9 }, pherrors.ErrUnknownAlgorithm},
		{"payload size", func(h *header) { h.PayloadSize = 4 }, pherrors.ErrCorruptedFunction},
		{"zero keys", func(h *header) { h.NumKeys = 0 }, pherrors.ErrCorruptedFunction},
		{"zero n", func(h *header) { h.N = 0 }, pherrors.ErrCorruptedFunction},
	}
	buf := make([]byte, headerSize)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid
			tt.mutate(&h)
			h.encodeTo(buf)
			if _, err := decodeHeader(buf); !errors.Is(err, tt.want) {
				t.Errorf("decodeHeader = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := decodeHeader(buf[:headerSize-1]); !errors.Is(err, pherrors.ErrTruncatedFile) {
		t.Errorf("short header: %v", err)
	}
}

func TestFooterRoundtrip(t *testing.T) {
	rng := newTestRNG(t)
	buf := make([]byte, footerSize)
	f := footer{BodyHash: rng.Uint64(), BodySize: rng.Uint64()}
	f.encodeTo(buf)
	got, err := decodeFooter(buf)
	if err != nil {
		t.Fatal(err)
	}
	if *got != f {
		t.Errorf("got %+v, want %+v", *got, f)
	}
}
