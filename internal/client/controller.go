package client

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/op/go-logging.v1"

	"laptev/internal/crypto"
	"laptev/internal/domain"
	"laptev/internal/protocol/envelope"
	"laptev/internal/protocol/index"
	"laptev/internal/protocol/keyexchange"
	"laptev/internal/store"
)

// DefaultPort is used when an address carries no port.
const DefaultPort = 12675

// VideoExt is the extension of downloaded videos.
const VideoExt = ".h264"

// ErrNotConnected is returned by operations that need a Ready session.
var ErrNotConnected = errors.New("client: not connected")

// State is the controller state.
type State int

const (
	Idle State = iota
	Handshaking
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Handshaking:
		return "handshaking"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseAddress accepts "ip" or "ip:port". IPv6 addresses with a port use
// the bracketed form.
func ParseAddress(s string) (netip.AddrPort, error) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		if ap.Port() == 0 {
			return netip.AddrPort{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, s)
		}
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, s)
	}
	return netip.AddrPortFrom(addr.Unmap(), DefaultPort), nil
}

// Controller drives one viewer session at a time. It is safe for concurrent
// use; Download and Delete calls for different ids may run in parallel.
type Controller struct {
	dialer      domain.Dialer
	passwords   domain.PasswordBook
	downloadDir string
	log         *logging.Logger

	mu         sync.Mutex
	state      State
	gen        uint64
	addr       netip.AddrPort
	transport  domain.HostTransport
	cipher     *envelope.Cipher
	recordings []domain.Recording
	cancel     context.CancelFunc
}

// New returns an Idle controller.
func New(dialer domain.Dialer, passwords domain.PasswordBook, downloadDir string, log *logging.Logger) *Controller {
	return &Controller{
		dialer:      dialer,
		passwords:   passwords,
		downloadDir: downloadDir,
		log:         log,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Address returns the host of the current session.
func (c *Controller) Address() netip.AddrPort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// Recordings returns a copy of the last synchronized index.
func (c *Controller) Recordings() []domain.Recording {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.recordings)
}

// Connect runs the handshake and password proof against address, then
// synchronizes once. Any current session is dropped first. On a handshake
// failure the controller is back in Idle and the error says why. A failed
// initial synchronize is returned but leaves the session Ready.
func (c *Controller) Connect(ctx context.Context, address string) error {
	ap, err := ParseAddress(address)
	if err != nil {
		return err
	}
	password, ok := c.passwords.Password(ap.Addr())
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownHost, ap.Addr())
	}
	tr, err := c.dialer.Dial(ap)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.resetLocked()
	c.state = Handshaking
	c.addr = ap
	gen := c.gen
	c.cancel = cancel
	c.mu.Unlock()

	cipher, err := c.handshake(ctx, tr, password)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.resetLocked()
		}
		c.mu.Unlock()
		c.log.Warningf("connect %s: %v", ap, err)
		return err
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return context.Canceled
	}
	c.state = Ready
	c.transport = tr
	c.cipher = cipher
	c.cancel = nil
	c.mu.Unlock()
	c.log.Noticef("connected to %s", ap)

	return c.Refresh(ctx)
}

func (c *Controller) handshake(ctx context.Context, tr domain.HostTransport, password []byte) (*envelope.Cipher, error) {
	// Any answer proves the host is up.
	if _, err := tr.Status(ctx); err != nil {
		return nil, err
	}

	init, err := keyexchange.NewInitiator()
	if err != nil {
		return nil, err
	}
	defer init.Abort()

	hostPub, err := tr.Handshake(ctx, init.PublicKey())
	if err != nil {
		return nil, err
	}
	key, err := init.Finish(hostPub)
	if err != nil {
		return nil, err
	}
	cipher, err := envelope.NewCipher(key)
	crypto.WipeKey((*[32]byte)(&key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyExchangeFailed, err)
	}

	proof, err := envelope.SealBytes(password, cipher)
	if err != nil {
		return nil, err
	}
	if err := tr.Authenticate(ctx, proof); err != nil {
		return nil, err
	}
	return cipher, nil
}

type session struct {
	gen       uint64
	transport domain.HostTransport
	cipher    *envelope.Cipher
}

func (c *Controller) session() (session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return session{}, ErrNotConnected
	}
	return session{gen: c.gen, transport: c.transport, cipher: c.cipher}, nil
}

// Refresh re-synchronizes the recording index without a new handshake.
func (c *Controller) Refresh(ctx context.Context) error {
	s, err := c.session()
	if err != nil {
		return err
	}
	sealed, err := s.transport.Synchronize(ctx)
	if err != nil {
		return err
	}
	plain, err := envelope.OpenBytes(sealed, s.cipher)
	if err != nil {
		return err
	}
	recs, err := index.Decode(plain)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.gen == s.gen {
		c.recordings = recs
	}
	c.mu.Unlock()
	c.log.Infof("synchronized %d recording(s)", len(recs))
	return nil
}

// Download fetches id and writes it to <download dir>/<id>.h264, returning
// the path. Nothing is written unless the envelope opens.
func (c *Controller) Download(ctx context.Context, id domain.RecordingID) (string, error) {
	s, err := c.session()
	if err != nil {
		return "", err
	}
	sealed, err := s.transport.Download(ctx, id)
	if err != nil {
		return "", err
	}
	video, err := envelope.OpenBytes(sealed, s.cipher)
	if err != nil {
		c.log.Warningf("download %s: %v", id, err)
		return "", err
	}

	if err := os.MkdirAll(c.downloadDir, 0o700); err != nil {
		return "", err
	}
	path := filepath.Join(c.downloadDir, id.String()+VideoExt)
	if err := store.WriteFileAtomic(path, video, 0o600); err != nil {
		return "", err
	}
	c.log.Infof("downloaded %s (%d bytes)", id, len(video))
	return path, nil
}

// Delete removes id on the host and from the local index.
func (c *Controller) Delete(ctx context.Context, id domain.RecordingID) error {
	s, err := c.session()
	if err != nil {
		return err
	}
	if err := s.transport.Delete(ctx, id); err != nil {
		c.log.Warningf("delete %s: %v", id, err)
		return err
	}

	c.mu.Lock()
	if c.gen == s.gen {
		c.recordings = slices.DeleteFunc(c.recordings, func(r domain.Recording) bool { return r.ID == id })
	}
	c.mu.Unlock()
	c.log.Infof("deleted %s", id)
	return nil
}

// Disconnect drops the session and cancels a handshake in flight.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

func (c *Controller) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.state = Idle
	c.addr = netip.AddrPort{}
	c.transport = nil
	c.cipher = nil
	c.recordings = nil
}
