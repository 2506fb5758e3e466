package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"

	"laptev/internal/domain"
)

// Client talks to one host over HTTP and implements domain.HostTransport.
type Client struct {
	Base string
	HTTP *http.Client
}

var _ domain.HostTransport = (*Client)(nil)

// NewClient returns a client for the host at addr. A nil hc uses
// http.DefaultClient.
func NewClient(addr netip.AddrPort, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{Base: "http://" + addr.String(), HTTP: hc}
}

// Status probes the host. Any HTTP answer proves liveness; only a 200
// means our session is authenticated.
func (c *Client) Status(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return false, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusForbidden:
		return false, nil
	}
	return false, fmt.Errorf("%w: status: %s", domain.ErrInternal, resp.Status)
}

// Handshake sends the viewer's public key and returns the host's reply
// verbatim. Every failure on this leg is a failed key exchange.
func (c *Client) Handshake(ctx context.Context, clientPublic domain.X25519Public) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPut, "/handshake/0", clientPublic[:])
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyExchangeFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: handshake: %s", domain.ErrKeyExchangeFailed, resp.Status)
	}
	return resp.body, nil
}

// Authenticate sends the sealed password.
func (c *Client) Authenticate(ctx context.Context, proof []byte) error {
	resp, err := c.do(ctx, http.MethodPut, "/handshake/1", proof)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusForbidden:
		return domain.ErrAuthenticationFailed
	}
	return fmt.Errorf("%w: authenticate: %s", domain.ErrInternal, resp.Status)
}

// Synchronize fetches the sealed recording index.
func (c *Client) Synchronize(ctx context.Context) ([]byte, error) {
	return c.protected(ctx, http.MethodGet, "/synchronize")
}

// Download fetches the sealed video of id.
func (c *Client) Download(ctx context.Context, id domain.RecordingID) ([]byte, error) {
	return c.protected(ctx, http.MethodGet, "/download/"+id.String())
}

// Delete asks the host to remove id.
func (c *Client) Delete(ctx context.Context, id domain.RecordingID) error {
	_, err := c.protected(ctx, http.MethodDelete, "/delete/"+id.String())
	return err
}

func (c *Client) protected(ctx context.Context, method, path string) ([]byte, error) {
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.body, nil
	case http.StatusForbidden:
		return nil, domain.ErrNotAuthenticated
	}
	return nil, fmt.Errorf("%w: %s %s: %s", domain.ErrInternal, method, path, resp.Status)
}

type response struct {
	*http.Response
	body []byte
}

// do runs one request and reads the whole body. Network failures become
// domain.ErrServerNotResponding; context cancellation is returned as is.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, c.transportErr(ctx, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, c.transportErr(ctx, err)
	}
	if len(b) > maxResponseSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", domain.ErrDecodeFailure, maxResponseSize)
	}
	return &response{Response: resp, body: b}, nil
}

func (c *Client) transportErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", domain.ErrServerNotResponding, err)
}

// Dialer builds HTTP clients sharing one http.Client.
type Dialer struct {
	HTTP *http.Client
}

// Dial implements domain.Dialer.
func (d Dialer) Dial(addr netip.AddrPort) (domain.HostTransport, error) {
	if !addr.IsValid() {
		return nil, domain.ErrInvalidAddress
	}
	return NewClient(addr, d.HTTP), nil
}
