// Package index encodes the recording index returned by synchronize.
//
// The index is a CBOR array of maps keyed by small integers:
// {1: id, 2: thumbnail}. Entries are ordered newest first.
package index

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"laptev/internal/domain"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 1 << 16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Encode serialises recordings in the given order.
func Encode(recs []domain.Recording) ([]byte, error) {
	if recs == nil {
		recs = []domain.Recording{}
	}
	b, err := encMode.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("index: encode: %w", err)
	}
	return b, nil
}

// Decode parses an encoded index.
func Decode(b []byte) ([]domain.Recording, error) {
	var recs []domain.Recording
	if err := decMode.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("index: %w: %v", domain.ErrDecodeFailure, err)
	}
	return recs, nil
}
