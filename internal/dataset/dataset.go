// Package dataset loads key sets from JSON files.
//
// Two shapes are accepted. A JSON array of strings assigns each key its
// position as payload. A JSON object maps each key to an explicit
// non-negative integer payload. Duplicate keys are rejected in both forms,
// including duplicate object members that encoding/json would otherwise
// collapse silently.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/afero"

	"github.com/tamirms/perfecthash"
	pherrors "github.com/tamirms/perfecthash/errors"
)

// Load reads the dataset at path from fs.
func Load(fs afero.Fs, path string) (*perfecthash.KeySet, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ks, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ks, nil
}

// Decode reads a single dataset document from r.
func Decode(r io.Reader) (*perfecthash.KeySet, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	ks := perfecthash.NewKeySet()
	switch tok {
	case json.Delim('['):
		err = decodeList(dec, ks)
	case json.Delim('{'):
		err = decodeObject(dec, ks)
	default:
		return nil, fmt.Errorf("%w: top-level value is %s", pherrors.ErrMalformedDataset, describe(tok))
	}
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: data after the top-level value", pherrors.ErrMalformedDataset)
	}
	return ks, nil
}

func decodeList(dec *json.Decoder, ks *perfecthash.KeySet) error {
	for i := uint64(0); dec.More(); i++ {
		tok, err := dec.Token()
		if err != nil {
			return malformed(err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: element %d is %s", pherrors.ErrNonStringKey, i, describe(tok))
		}
		if err := ks.Add(key, i); err != nil {
			return err
		}
	}
	return closing(dec)
}

func decodeObject(dec *json.Decoder, ks *perfecthash.KeySet) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return malformed(err)
		}
		// The decoder only yields strings in key position.
		key := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return malformed(err)
		}
		num, ok := tok.(json.Number)
		if !ok {
			return fmt.Errorf("%w: key %q has %s", pherrors.ErrInvalidValue, key, describe(tok))
		}
		v, err := strconv.ParseUint(num.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: key %q has %s", pherrors.ErrInvalidValue, key, num)
		}
		if err := ks.Add(key, v); err != nil {
			return err
		}
	}
	return closing(dec)
}

func closing(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil {
		return malformed(err)
	}
	return nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", pherrors.ErrMalformedDataset, err)
}

func describe(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			return "an object"
		}
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", tok)
}
