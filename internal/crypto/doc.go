// Package crypto exposes the minimal primitives used by laptev.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short fingerprints of keys and passwords for display (Fingerprint)
//   - Base64 helpers for secrets stored in text config (B64, FromB64)
//
// # Notes
//
// Key types are the fixed-size arrays defined in internal/domain. Callers
// should treat returned secrets as sensitive and Wipe them once a session
// cipher has been built from them.
package crypto
