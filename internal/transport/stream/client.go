package stream

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"laptev/internal/domain"
	"laptev/internal/protocol/frame"
)

// Client implements domain.HostTransport over TCP. Each call uses its own
// connection; the host keys sessions by IP so they survive reconnects.
type Client struct {
	addr    netip.AddrPort
	timeout time.Duration
	dialer  net.Dialer
}

var _ domain.HostTransport = (*Client)(nil)

// NewClient returns a client for the host at addr. timeout bounds each
// call when the context carries no earlier deadline.
func NewClient(addr netip.AddrPort, timeout time.Duration) *Client {
	return &Client{addr: addr, timeout: timeout}
}

func (c *Client) roundTrip(ctx context.Context, req frame.Request) (frame.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr.String())
	if err != nil {
		return frame.Response{}, c.transportErr(ctx, err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := frame.WriteRequest(conn, req); err != nil {
		return frame.Response{}, c.transportErr(ctx, err)
	}
	resp, err := frame.ReadResponse(conn)
	if err != nil {
		return frame.Response{}, c.transportErr(ctx, err)
	}
	return resp, nil
}

func (c *Client) transportErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr == context.Canceled {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", domain.ErrServerNotResponding, err)
}

// Status probes the host.
func (c *Client) Status(ctx context.Context) (bool, error) {
	resp, err := c.roundTrip(ctx, frame.Request{Op: frame.OpStatus})
	if err != nil {
		return false, err
	}
	switch resp.Status {
	case frame.StatusOK:
		return true, nil
	case frame.StatusForbidden:
		return false, nil
	}
	return false, fmt.Errorf("%w: status: %d", domain.ErrInternal, resp.Status)
}

// Handshake sends the viewer's public key and returns the host's reply.
func (c *Client) Handshake(ctx context.Context, clientPublic domain.X25519Public) ([]byte, error) {
	resp, err := c.roundTrip(ctx, frame.Request{Op: frame.OpHandshake, Body: clientPublic[:]})
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyExchangeFailed, err)
	}
	if resp.Status != frame.StatusOK {
		return nil, fmt.Errorf("%w: handshake status %d", domain.ErrKeyExchangeFailed, resp.Status)
	}
	return resp.Body, nil
}

// Authenticate sends the sealed password.
func (c *Client) Authenticate(ctx context.Context, proof []byte) error {
	resp, err := c.roundTrip(ctx, frame.Request{Op: frame.OpAuthenticate, Body: proof})
	if err != nil {
		return err
	}
	switch resp.Status {
	case frame.StatusOK:
		return nil
	case frame.StatusForbidden:
		return domain.ErrAuthenticationFailed
	}
	return fmt.Errorf("%w: authenticate status %d", domain.ErrInternal, resp.Status)
}

// Synchronize fetches the sealed recording index.
func (c *Client) Synchronize(ctx context.Context) ([]byte, error) {
	return c.protected(ctx, frame.Request{Op: frame.OpSynchronize})
}

// Download fetches the sealed video of id.
func (c *Client) Download(ctx context.Context, id domain.RecordingID) ([]byte, error) {
	return c.protected(ctx, frame.Request{Op: frame.OpDownload, ID: uint64(id)})
}

// Delete asks the host to remove id.
func (c *Client) Delete(ctx context.Context, id domain.RecordingID) error {
	_, err := c.protected(ctx, frame.Request{Op: frame.OpDelete, ID: uint64(id)})
	return err
}

func (c *Client) protected(ctx context.Context, req frame.Request) ([]byte, error) {
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	switch resp.Status {
	case frame.StatusOK:
		return resp.Body, nil
	case frame.StatusForbidden:
		return nil, domain.ErrNotAuthenticated
	}
	return nil, fmt.Errorf("%w: %s status %d", domain.ErrInternal, req.Op, resp.Status)
}

// Dialer builds stream clients.
type Dialer struct {
	Timeout time.Duration
}

// Dial implements domain.Dialer.
func (d Dialer) Dial(addr netip.AddrPort) (domain.HostTransport, error) {
	if !addr.IsValid() {
		return nil, domain.ErrInvalidAddress
	}
	return NewClient(addr, d.Timeout), nil
}
