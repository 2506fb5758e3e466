package keyexchange_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"laptev/internal/domain"
	"laptev/internal/protocol/envelope"
	"laptev/internal/protocol/keyexchange"
)

func TestHandshake_BothSidesAgree(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 16; i++ {
		init, err := keyexchange.NewInitiator()
		require.NoError(err)
		clientPub := init.PublicKey()

		hostPub, hostKey, err := keyexchange.Respond(clientPub[:])
		require.NoError(err)

		clientKey, err := init.Finish(hostPub[:])
		require.NoError(err)
		require.Equal(hostKey, clientKey)
		require.NotEqual(domain.SessionKey{}, clientKey)
	}
}

func TestHandshake_KeysAreUsableCiphers(t *testing.T) {
	init, err := keyexchange.NewInitiator()
	require.NoError(t, err)
	pub := init.PublicKey()
	hostPub, hostKey, err := keyexchange.Respond(pub[:])
	require.NoError(t, err)
	clientKey, err := init.Finish(hostPub[:])
	require.NoError(t, err)

	hostCipher, err := envelope.NewCipher(hostKey)
	require.NoError(t, err)
	clientCipher, err := envelope.NewCipher(clientKey)
	require.NoError(t, err)

	b, err := envelope.SealBytes([]byte("pw"), clientCipher)
	require.NoError(t, err)
	pt, err := envelope.OpenBytes(b, hostCipher)
	require.NoError(t, err)
	require.Equal(t, []byte("pw"), pt)
}

func TestRespond_RejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 1, 31, 33, 64} {
		_, _, err := keyexchange.Respond(make([]byte, n))
		require.ErrorIs(t, err, domain.ErrKeyExchangeFailed, "len %d", n)
	}
}

func TestRespond_RejectsLowOrderKey(t *testing.T) {
	_, _, err := keyexchange.Respond(make([]byte, keyexchange.PublicKeySize))
	require.ErrorIs(t, err, domain.ErrKeyExchangeFailed)
}

func TestInitiator_SingleUse(t *testing.T) {
	init, err := keyexchange.NewInitiator()
	require.NoError(t, err)
	pub := init.PublicKey()
	hostPub, _, err := keyexchange.Respond(pub[:])
	require.NoError(t, err)

	_, err = init.Finish(hostPub[:])
	require.NoError(t, err)
	_, err = init.Finish(hostPub[:])
	require.ErrorIs(t, err, domain.ErrKeyExchangeFailed)
}

func TestInitiator_FinishRejectsShortReply(t *testing.T) {
	init, err := keyexchange.NewInitiator()
	require.NoError(t, err)
	_, err = init.Finish([]byte("short"))
	require.ErrorIs(t, err, domain.ErrKeyExchangeFailed)
}
