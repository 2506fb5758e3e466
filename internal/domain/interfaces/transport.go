package interfaces

import (
	"context"
	"net/netip"

	domaintypes "laptev/internal/domain/types"
)

// HostService is the transport-agnostic host surface. Bindings (HTTP, raw
// stream) decode requests, derive the caller identity from the connection
// and map returned errors onto their own status codes.
type HostService interface {
	Status(id domaintypes.SessionIdentity) error
	Handshake(id domaintypes.SessionIdentity, clientPublic []byte) (domaintypes.X25519Public, error)
	Authenticate(id domaintypes.SessionIdentity, proof []byte) error
	Synchronize(ctx context.Context, id domaintypes.SessionIdentity) ([]byte, error)
	Download(ctx context.Context, id domaintypes.SessionIdentity, rec domaintypes.RecordingID) ([]byte, error)
	Delete(ctx context.Context, id domaintypes.SessionIdentity, rec domaintypes.RecordingID) error
}

// HostTransport is how the viewer talks to one host, all with context.
// Envelope-carrying calls take and return the encoded envelope bytes.
type HostTransport interface {
	// Status reports whether the caller is authenticated. A nil error with
	// false means the host is alive but does not know us (yet).
	Status(ctx context.Context) (bool, error)
	Handshake(ctx context.Context, clientPublic domaintypes.X25519Public) ([]byte, error)
	Authenticate(ctx context.Context, proof []byte) error
	Synchronize(ctx context.Context) ([]byte, error)
	Download(ctx context.Context, id domaintypes.RecordingID) ([]byte, error)
	Delete(ctx context.Context, id domaintypes.RecordingID) error
}

// Dialer produces a HostTransport for a host address.
type Dialer interface {
	Dial(addr netip.AddrPort) (HostTransport, error)
}
