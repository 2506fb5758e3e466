package envelope

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/agl/gcmsiv"

	"laptev/internal/domain"
)

const (
	// NonceSize is the size of the per-envelope random nonce.
	NonceSize = 12

	lengthSize = 8
	headerSize = NonceSize + lengthSize
)

var (
	// ErrDecode wraps domain.ErrDecodeFailure for malformed envelope bytes.
	ErrDecode = fmt.Errorf("envelope: %w", domain.ErrDecodeFailure)

	// ErrOpen is returned when the authentication tag does not verify.
	ErrOpen = errors.New("envelope: message authentication failed")
)

// Cipher is a session cipher bound to one SessionKey. It is safe for
// concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds the session cipher for key. The caller may wipe key
// afterwards.
func NewCipher(key domain.SessionKey) (*Cipher, error) {
	aead, err := gcmsiv.NewGCMSIV(key[:])
	if err != nil {
		return nil, fmt.Errorf("envelope: building cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Envelope is a nonce and the ciphertext sealed under it.
type Envelope struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
}

// Seal encrypts plaintext under c with a fresh random nonce.
func Seal(plaintext []byte, c *Cipher) (Envelope, error) {
	var env Envelope
	if _, err := io.ReadFull(rand.Reader, env.Nonce[:]); err != nil {
		return Envelope{}, fmt.Errorf("envelope: reading nonce: %w", err)
	}
	env.Ciphertext = c.aead.Seal(nil, env.Nonce[:], plaintext, nil)
	return env, nil
}

// Open authenticates and decrypts e under c. No plaintext is returned on
// failure.
func (e Envelope) Open(c *Cipher) ([]byte, error) {
	pt, err := c.aead.Open(nil, e.Nonce[:], e.Ciphertext, nil)
	if err != nil {
		return nil, ErrOpen
	}
	return pt, nil
}

// MarshalBinary encodes e in the wire format.
func (e Envelope) MarshalBinary() ([]byte, error) {
	out := make([]byte, headerSize+len(e.Ciphertext))
	copy(out, e.Nonce[:])
	binary.LittleEndian.PutUint64(out[NonceSize:headerSize], uint64(len(e.Ciphertext)))
	copy(out[headerSize:], e.Ciphertext)
	return out, nil
}

// UnmarshalBinary decodes the wire format. The declared length must match
// the remaining bytes exactly.
func (e *Envelope) UnmarshalBinary(b []byte) error {
	if len(b) < headerSize {
		return ErrDecode
	}
	n := binary.LittleEndian.Uint64(b[NonceSize:headerSize])
	if n != uint64(len(b)-headerSize) {
		return ErrDecode
	}
	copy(e.Nonce[:], b[:NonceSize])
	e.Ciphertext = append([]byte(nil), b[headerSize:]...)
	return nil
}

// SealBytes seals plaintext and returns the encoded envelope.
func SealBytes(plaintext []byte, c *Cipher) ([]byte, error) {
	env, err := Seal(plaintext, c)
	if err != nil {
		return nil, err
	}
	return env.MarshalBinary()
}

// OpenBytes decodes b and opens it. Decoding happens before any
// cryptographic work.
func OpenBytes(b []byte, c *Cipher) ([]byte, error) {
	var env Envelope
	if err := env.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return env.Open(c)
}
