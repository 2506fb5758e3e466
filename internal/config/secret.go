package config

import (
	"crypto/rand"
	"fmt"

	"laptev/internal/crypto"
)

// Secret is a byte string stored as standard base64 text.
type Secret []byte

// MarshalText implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(crypto.B64(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Secret) UnmarshalText(b []byte) error {
	out, err := crypto.FromB64(string(b))
	if err != nil {
		return fmt.Errorf("config: secret is not base64: %w", err)
	}
	*s = out
	return nil
}

// String keeps secrets out of logs and %v output.
func (s Secret) String() string { return fmt.Sprintf("[%d byte secret]", len(s)) }

// Fingerprint identifies the secret without revealing it.
func (s Secret) Fingerprint() string { return crypto.Fingerprint(s) }

// RandomSecret returns n bytes from crypto/rand.
func RandomSecret(n int) (Secret, error) {
	s := make(Secret, n)
	if _, err := rand.Read(s); err != nil {
		return nil, fmt.Errorf("config: generating secret: %w", err)
	}
	return s, nil
}
