// Package keyexchange implements the two-message ephemeral X25519 handshake
// that precedes every session.
//
// # Flow
//
//  1. The viewer creates an Initiator and sends Initiator.PublicKey (32 bytes).
//  2. The host calls Respond with those bytes. It gets back its own ephemeral
//     public key to return, and the SessionKey to store for the viewer.
//  3. The viewer calls Initiator.Finish with the host's 32 bytes and derives
//     the identical SessionKey.
//
// The session key is the raw Diffie-Hellman shared secret. Both private
// halves are wiped as soon as the secret is computed, so a session cannot be
// recovered once its keys are dropped.
package keyexchange
