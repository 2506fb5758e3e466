// Package envelope implements the encrypted envelope: the only unit placed on
// the wire once a session key has been agreed.
//
// # Format
//
//	nonce[12] || uint64-LE(len(ciphertext)) || ciphertext
//
// The ciphertext is AES-256-GCM-SIV output (tag included) under the session
// key. Every Seal draws a fresh random nonce. The envelope carries no type
// discriminant; the operation is implied by the route that carried it.
//
// # Errors
//
// ErrDecode is returned for byte streams that do not match the format.
// ErrOpen is the single failure for a tag mismatch, whatever the cause
// (wrong key, flipped bit, truncated ciphertext). Callers must not
// distinguish further.
package envelope
