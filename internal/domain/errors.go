package domain

import "errors"

// Protocol failures. Bindings map these onto status codes; callers match
// them with errors.Is.
var (
	// ErrServerNotResponding is a transport or connect failure. Retrying
	// later is safe.
	ErrServerNotResponding = errors.New("server not responding")

	// ErrKeyExchangeFailed means the public key exchange carried malformed
	// or missing data.
	ErrKeyExchangeFailed = errors.New("key exchange failed")

	// ErrAuthenticationFailed covers a wrong password, a tampered proof and
	// an unknown session alike. The causes are deliberately not told apart.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotAuthenticated is returned for protected operations without an
	// authenticated, unexpired session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInternal is a host-side storage or encoding failure. Details stay
	// in the host log.
	ErrInternal = errors.New("internal server error")

	// ErrNotFound is a missing recording artifact. It never leaves the host
	// as such; bindings report it as ErrInternal.
	ErrNotFound = errors.New("recording not found")

	// ErrInvalidAddress is malformed viewer input for a host address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrDecodeFailure is malformed wire data.
	ErrDecodeFailure = errors.New("malformed data")

	// ErrUnknownHost means the viewer has no password configured for the
	// host it is asked to connect to.
	ErrUnknownHost = errors.New("no password configured for host")
)
