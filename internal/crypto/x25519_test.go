package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"laptev/internal/crypto"
	"laptev/internal/domain"
)

func TestDH_Symmetric(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 32; i++ {
		aPriv, aPub, err := crypto.GenerateX25519()
		require.NoError(err)
		bPriv, bPub, err := crypto.GenerateX25519()
		require.NoError(err)

		ab, err := crypto.DH(aPriv, bPub)
		require.NoError(err)
		ba, err := crypto.DH(bPriv, aPub)
		require.NoError(err)
		require.Equal(ab, ba, "shared secrets differ")
		require.NotEqual([32]byte{}, ab)
	}
}

func TestGenerateX25519_Clamped(t *testing.T) {
	priv, _, err := crypto.GenerateX25519()
	require.NoError(t, err)
	require.Zero(t, priv[0]&7)
	require.Zero(t, priv[31]&128)
	require.NotZero(t, priv[31]&64)
}

func TestDH_RejectsLowOrderPoint(t *testing.T) {
	priv, _, err := crypto.GenerateX25519()
	require.NoError(t, err)

	_, err = crypto.DH(priv, domain.X25519Public{})
	require.ErrorIs(t, err, crypto.ErrLowOrderPoint)
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	crypto.Wipe(b)
	require.Equal(t, []byte{0, 0, 0, 0}, b)

	var k [32]byte
	k[5] = 9
	crypto.WipeKey(&k)
	require.Equal(t, [32]byte{}, k)
}

func TestFingerprint(t *testing.T) {
	fp := crypto.Fingerprint([]byte("abc"))
	require.Len(t, fp, 20)
	require.Equal(t, "ba7816bf8f01cfea4141", fp)
	require.NotEqual(t, fp, crypto.Fingerprint([]byte("abd")))
}

func TestB64(t *testing.T) {
	b, err := crypto.FromB64(crypto.B64([]byte{0, 255, 7}))
	require.NoError(t, err)
	require.Equal(t, []byte{0, 255, 7}, b)
}
