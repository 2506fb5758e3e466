package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"laptev/internal/domain"
)

const (
	DefaultPageSize    = 25
	DefaultDownloadDir = "downloads"
	DefaultTimeout     = 10

	TransportHTTP   = "http"
	TransportStream = "stream"
)

// Client is the viewer configuration.
type Client struct {
	// Hosts maps a host IP address to its pre-shared password.
	Hosts map[string]Secret

	// PageSize is the number of recordings shown per page.
	PageSize int

	// UTCOffsetMinutes shifts displayed recording times.
	UTCOffsetMinutes int

	// DownloadDir receives downloaded videos. Relative paths are resolved
	// against the directory of the config file.
	DownloadDir string

	// Transport selects the binding: "http" or "stream".
	Transport string

	// Timeout bounds each network call, in seconds.
	Timeout int

	Logging *Logging
}

var _ domain.PasswordBook = (*Client)(nil)

// Password returns the password configured for host.
func (c *Client) Password(host netip.Addr) ([]byte, bool) {
	pw, ok := c.Hosts[host.Unmap().String()]
	if !ok || len(pw) == 0 {
		return nil, false
	}
	return pw, true
}

// SetHost records the password for host.
func (c *Client) SetHost(host netip.Addr, password []byte) {
	if c.Hosts == nil {
		c.Hosts = make(map[string]Secret)
	}
	c.Hosts[host.Unmap().String()] = append(Secret(nil), password...)
}

// RemoveHost forgets host and reports whether it was known.
func (c *Client) RemoveHost(host netip.Addr) bool {
	key := host.Unmap().String()
	_, ok := c.Hosts[key]
	delete(c.Hosts, key)
	return ok
}

// Location returns the display time zone.
func (c *Client) Location() *time.Location {
	if c.UTCOffsetMinutes == 0 {
		return time.UTC
	}
	sign, m := '+', c.UTCOffsetMinutes
	if m < 0 {
		sign, m = '-', -m
	}
	return time.FixedZone(fmt.Sprintf("UTC%c%02d:%02d", sign, m/60, m%60), c.UTCOffsetMinutes*60)
}

// TimeoutDuration returns Timeout as a duration.
func (c *Client) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// FixupAndValidate applies defaults and canonicalises host keys.
func (c *Client) FixupAndValidate() error {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.DownloadDir == "" {
		c.DownloadDir = DefaultDownloadDir
	}
	if c.Transport == "" {
		c.Transport = TransportHTTP
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logging == nil {
		c.Logging = &Logging{}
	}

	hosts := make(map[string]Secret, len(c.Hosts))
	for k, v := range c.Hosts {
		addr, err := netip.ParseAddr(k)
		if err != nil {
			return fmt.Errorf("config: Client: host %q is not an IP address", k)
		}
		hosts[addr.Unmap().String()] = v
	}
	c.Hosts = hosts

	if c.PageSize < 0 {
		return errors.New("config: Client: PageSize is negative")
	}
	if c.Timeout < 0 {
		return errors.New("config: Client: Timeout is negative")
	}
	if c.UTCOffsetMinutes < -14*60 || c.UTCOffsetMinutes > 14*60 {
		return fmt.Errorf("config: Client: UTCOffsetMinutes %d out of range", c.UTCOffsetMinutes)
	}
	switch c.Transport {
	case TransportHTTP, TransportStream:
	default:
		return fmt.Errorf("config: Client: unknown Transport %q", c.Transport)
	}
	return c.Logging.validate()
}

// DefaultClient returns an empty viewer configuration.
func DefaultClient() *Client {
	c := &Client{Hosts: make(map[string]Secret)}
	_ = c.FixupAndValidate()
	return c
}

// LoadClient parses and validates b as a viewer config file body.
func LoadClient(b []byte) (*Client, error) {
	if b == nil {
		return nil, errors.New("config: no nil buffer as config file")
	}
	c := new(Client)
	if _, err := toml.Decode(string(b), c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.FixupAndValidate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadClientFile loads the viewer config at path. A missing file yields the
// defaults; nothing is written until Save.
func LoadClientFile(path string) (*Client, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultClient(), nil
	}
	if err != nil {
		return nil, err
	}
	c, err := LoadClient(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DownloadPath resolves DownloadDir relative to the config file at path.
func (c *Client) DownloadPath(path string) string {
	if filepath.IsAbs(c.DownloadDir) {
		return c.DownloadDir
	}
	return filepath.Join(filepath.Dir(path), c.DownloadDir)
}

// Save writes c to path atomically with owner-only permissions.
func (c *Client) Save(path string) error {
	return save(path, c)
}
