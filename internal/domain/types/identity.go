package types

import (
	"net"
	"net/netip"
)

// SessionIdentity keys the host's session table. It is the network origin
// (IP address, port ignored) of the viewer that ran the key exchange.
type SessionIdentity struct {
	Addr netip.Addr
}

// String returns the textual IP address.
func (id SessionIdentity) String() string { return id.Addr.String() }

// IsValid reports whether the identity carries an address.
func (id SessionIdentity) IsValid() bool { return id.Addr.IsValid() }

// IdentityFromAddr builds an identity from a net.Addr as reported by a
// listener. IPv4-mapped IPv6 addresses are unmapped so both stacks agree.
func IdentityFromAddr(a net.Addr) (SessionIdentity, bool) {
	if a == nil {
		return SessionIdentity{}, false
	}
	return IdentityFromRemoteAddr(a.String())
}

// IdentityFromRemoteAddr parses an "ip:port" string such as
// http.Request.RemoteAddr.
func IdentityFromRemoteAddr(remote string) (SessionIdentity, bool) {
	ap, err := netip.ParseAddrPort(remote)
	if err != nil {
		// Some listeners (unix sockets, tests) report bare addresses.
		addr, err := netip.ParseAddr(remote)
		if err != nil {
			return SessionIdentity{}, false
		}
		return SessionIdentity{Addr: addr.Unmap()}, true
	}
	return SessionIdentity{Addr: ap.Addr().Unmap()}, true
}
