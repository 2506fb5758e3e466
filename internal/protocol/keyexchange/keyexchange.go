package keyexchange

import (
	"fmt"

	"laptev/internal/crypto"
	"laptev/internal/domain"
)

// PublicKeySize is the wire size of a handshake public key.
const PublicKeySize = 32

// ParsePublicKey checks b is exactly one X25519 public key.
func ParsePublicKey(b []byte) (domain.X25519Public, error) {
	var pub domain.X25519Public
	if len(b) != PublicKeySize {
		return pub, fmt.Errorf("%w: public key is %d bytes, want %d",
			domain.ErrKeyExchangeFailed, len(b), PublicKeySize)
	}
	copy(pub[:], b)
	return pub, nil
}

// Initiator is the viewer half of the handshake. It is single use.
type Initiator struct {
	priv domain.X25519Private
	pub  domain.X25519Public
	done bool
}

// NewInitiator generates the viewer's ephemeral key pair.
func NewInitiator() (*Initiator, error) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyExchangeFailed, err)
	}
	return &Initiator{priv: priv, pub: pub}, nil
}

// PublicKey returns the public half to send to the host.
func (i *Initiator) PublicKey() domain.X25519Public { return i.pub }

// Finish derives the session key from the host's reply and wipes the
// ephemeral private key.
func (i *Initiator) Finish(hostPublic []byte) (domain.SessionKey, error) {
	defer i.Abort()
	if i.done {
		return domain.SessionKey{}, fmt.Errorf("%w: initiator already used", domain.ErrKeyExchangeFailed)
	}
	pub, err := ParsePublicKey(hostPublic)
	if err != nil {
		return domain.SessionKey{}, err
	}
	return derive(i.priv, pub)
}

// Abort discards the ephemeral private key without deriving anything.
func (i *Initiator) Abort() {
	crypto.WipeKey((*[32]byte)(&i.priv))
	i.done = true
}

// Respond is the host half: it validates the viewer's public key, generates
// the host's ephemeral pair and derives the session key.
func Respond(clientPublic []byte) (domain.X25519Public, domain.SessionKey, error) {
	peer, err := ParsePublicKey(clientPublic)
	if err != nil {
		return domain.X25519Public{}, domain.SessionKey{}, err
	}
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.X25519Public{}, domain.SessionKey{}, fmt.Errorf("%w: %v", domain.ErrKeyExchangeFailed, err)
	}
	defer crypto.WipeKey((*[32]byte)(&priv))

	key, err := derive(priv, peer)
	if err != nil {
		return domain.X25519Public{}, domain.SessionKey{}, err
	}
	return pub, key, nil
}

func derive(priv domain.X25519Private, peer domain.X25519Public) (domain.SessionKey, error) {
	secret, err := crypto.DH(priv, peer)
	if err != nil {
		return domain.SessionKey{}, fmt.Errorf("%w: %v", domain.ErrKeyExchangeFailed, err)
	}
	key := domain.SessionKey(secret)
	crypto.WipeKey(&secret)
	return key, nil
}
