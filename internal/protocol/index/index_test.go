package index_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"laptev/internal/domain"
	"laptev/internal/protocol/index"
)

func TestEncodeDecode(t *testing.T) {
	recs := []domain.Recording{
		{ID: 1700000300, Thumbnail: []byte{0xff, 0xd8, 0x01}},
		{ID: 1700000200, Thumbnail: []byte{0xff, 0xd8, 0x02}},
		{ID: 1700000100, Thumbnail: []byte{}},
	}
	b, err := index.Encode(recs)
	require.NoError(t, err)

	got, err := index.Decode(b)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range recs {
		require.Equal(t, recs[i].ID, got[i].ID)
		require.Equal(t, len(recs[i].Thumbnail), len(got[i].Thumbnail))
	}
	require.Equal(t, recs[0].Thumbnail, got[0].Thumbnail)
}

func TestEncode_EmptyIsArray(t *testing.T) {
	b, err := index.Encode(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x80}, b)

	got, err := index.Decode(b)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecode_Garbage(t *testing.T) {
	for _, b := range [][]byte{nil, {0xff}, {0x81, 0x01}, []byte("not cbor")} {
		_, err := index.Decode(b)
		require.ErrorIs(t, err, domain.ErrDecodeFailure, "%x", b)
	}
}
