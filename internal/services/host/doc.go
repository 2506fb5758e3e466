// Package host implements the host side of the session protocol
// independently of any transport.
//
// A viewer first runs Handshake, which installs a fresh unauthenticated
// session keyed by its network identity, then proves the shared password
// with Authenticate. Only then do Synchronize, Download and Delete succeed;
// each returns or accepts nothing but sealed envelopes.
package host
