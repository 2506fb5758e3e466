package client_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptev/internal/client"
	"laptev/internal/domain"
	"laptev/internal/log"
	"laptev/internal/protocol/envelope"
	"laptev/internal/services/host"
	"laptev/internal/store"
	"laptev/internal/transport/web"
)

var (
	hostAddr = netip.MustParseAddr("192.168.7.2")
	password = []byte("shared secret")
)

// loopback calls a host.Service in process as a fixed viewer identity.
type loopback struct {
	svc *host.Service
	id  domain.SessionIdentity

	tamperDownload bool
	handshakeGate  chan struct{}
	down           bool
}

func (l *loopback) Status(ctx context.Context) (bool, error) {
	if l.down {
		return false, domain.ErrServerNotResponding
	}
	err := l.svc.Status(l.id)
	if errors.Is(err, domain.ErrNotAuthenticated) {
		return false, nil
	}
	return err == nil, err
}

func (l *loopback) Handshake(ctx context.Context, pub domain.X25519Public) ([]byte, error) {
	if l.handshakeGate != nil {
		close(l.handshakeGate)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	hp, err := l.svc.Handshake(l.id, pub[:])
	if err != nil {
		return nil, err
	}
	return hp[:], nil
}

func (l *loopback) Authenticate(ctx context.Context, proof []byte) error {
	return l.svc.Authenticate(l.id, proof)
}

func (l *loopback) Synchronize(ctx context.Context) ([]byte, error) {
	return l.svc.Synchronize(ctx, l.id)
}

func (l *loopback) Download(ctx context.Context, id domain.RecordingID) ([]byte, error) {
	b, err := l.svc.Download(ctx, l.id, id)
	if err == nil && l.tamperDownload {
		b[len(b)-1] ^= 0x80
	}
	return b, err
}

func (l *loopback) Delete(ctx context.Context, id domain.RecordingID) error {
	return l.svc.Delete(ctx, l.id, id)
}

type dialer struct{ tr domain.HostTransport }

func (d dialer) Dial(netip.AddrPort) (domain.HostTransport, error) { return d.tr, nil }

type book map[netip.Addr][]byte

func (b book) Password(a netip.Addr) ([]byte, bool) {
	pw, ok := b[a]
	return pw, ok
}

type fixture struct {
	ctl        *client.Controller
	tr         *loopback
	recordings *store.RecordingFileStore
	downloads  string
}

func newFixture(t *testing.T, pw []byte) *fixture {
	t.Helper()
	backend, err := log.NewWriter(io.Discard, "DEBUG")
	require.NoError(t, err)

	recordings := store.NewRecordingFileStore(t.TempDir())
	svc := host.New(store.NewSessionStore(time.Minute), recordings,
		host.Policy{Password: password, SyncLimit: 25}, backend.GetLogger("host"))
	tr := &loopback{svc: svc, id: domain.SessionIdentity{Addr: netip.MustParseAddr("192.168.7.50")}}
	downloads := filepath.Join(t.TempDir(), "downloads")
	ctl := client.New(dialer{tr}, book{hostAddr: pw}, downloads, backend.GetLogger("client"))
	return &fixture{ctl: ctl, tr: tr, recordings: recordings, downloads: downloads}
}

func (f *fixture) seed(t *testing.T, ids ...domain.RecordingID) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.recordings.Put(context.Background(), id, []byte("t"+id.String()), []byte("v"+id.String())))
	}
}

func TestParseAddress(t *testing.T) {
	cases := map[string]string{
		"192.168.1.4":      "192.168.1.4:12675",
		"192.168.1.4:9000": "192.168.1.4:9000",
		"::ffff:10.0.0.1":  "10.0.0.1:12675",
		"[fe80::1]:8080":   "[fe80::1]:8080",
		"fe80::1":          "[fe80::1]:12675",
	}
	for in, want := range cases {
		ap, err := client.ParseAddress(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, ap.String(), in)
	}
	for _, in := range []string{"", "camera.local", "1.2.3", "1.2.3.4:0", "1.2.3.4:99999"} {
		_, err := client.ParseAddress(in)
		require.ErrorIs(t, err, domain.ErrInvalidAddress, in)
	}
}

func TestConnect_HappyPath(t *testing.T) {
	f := newFixture(t, password)
	f.seed(t, 3, 1, 2)
	ctx := context.Background()

	assert.Equal(t, client.Idle, f.ctl.State())
	require.NoError(t, f.ctl.Connect(ctx, hostAddr.String()))
	assert.Equal(t, client.Ready, f.ctl.State())
	assert.Equal(t, hostAddr, f.ctl.Address().Addr())

	recs := f.ctl.Recordings()
	require.Len(t, recs, 3)
	assert.Equal(t, domain.RecordingID(3), recs[0].ID)
	assert.Equal(t, []byte("t3"), recs[0].Thumbnail)

	path, err := f.ctl.Download(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.downloads, "2.h264"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), b)

	require.NoError(t, f.ctl.Delete(ctx, 2))
	for _, r := range f.ctl.Recordings() {
		assert.NotEqual(t, domain.RecordingID(2), r.ID)
	}

	f.seed(t, 9)
	require.NoError(t, f.ctl.Refresh(ctx))
	assert.Equal(t, domain.RecordingID(9), f.ctl.Recordings()[0].ID)

	f.ctl.Disconnect()
	assert.Equal(t, client.Idle, f.ctl.State())
	assert.Empty(t, f.ctl.Recordings())
	require.ErrorIs(t, f.ctl.Refresh(ctx), client.ErrNotConnected)
}

func TestConnect_WrongPassword(t *testing.T) {
	f := newFixture(t, []byte("not it"))
	err := f.ctl.Connect(context.Background(), hostAddr.String())
	require.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.Equal(t, client.Idle, f.ctl.State())
}

func TestConnect_UnknownHostAndBadAddress(t *testing.T) {
	f := newFixture(t, password)
	require.ErrorIs(t, f.ctl.Connect(context.Background(), "10.9.9.9"), domain.ErrUnknownHost)
	require.ErrorIs(t, f.ctl.Connect(context.Background(), "nope"), domain.ErrInvalidAddress)
	assert.Equal(t, client.Idle, f.ctl.State())
}

func TestConnect_ServerDown(t *testing.T) {
	f := newFixture(t, password)
	f.tr.down = true
	err := f.ctl.Connect(context.Background(), hostAddr.String())
	require.ErrorIs(t, err, domain.ErrServerNotResponding)
	assert.Equal(t, client.Idle, f.ctl.State())
}

func TestDisconnectDuringHandshake(t *testing.T) {
	f := newFixture(t, password)
	f.tr.handshakeGate = make(chan struct{})

	errCh := make(chan error, 1)
	go func() { errCh <- f.ctl.Connect(context.Background(), hostAddr.String()) }()

	<-f.tr.handshakeGate
	assert.Equal(t, client.Handshaking, f.ctl.State())
	f.ctl.Disconnect()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Connect did not return after Disconnect")
	}
	assert.Equal(t, client.Idle, f.ctl.State())
}

func TestDownload_TamperedWritesNothing(t *testing.T) {
	f := newFixture(t, password)
	f.seed(t, 5)
	ctx := context.Background()
	require.NoError(t, f.ctl.Connect(ctx, hostAddr.String()))

	f.tr.tamperDownload = true
	_, err := f.ctl.Download(ctx, 5)
	require.ErrorIs(t, err, envelope.ErrOpen)
	_, statErr := os.Stat(filepath.Join(f.downloads, "5.h264"))
	require.ErrorIs(t, statErr, os.ErrNotExist)
	assert.Equal(t, client.Ready, f.ctl.State(), "a failed download keeps the session")
}

func TestDownload_MissingKeepsSession(t *testing.T) {
	f := newFixture(t, password)
	ctx := context.Background()
	require.NoError(t, f.ctl.Connect(ctx, hostAddr.String()))

	_, err := f.ctl.Download(ctx, 404)
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, client.Ready, f.ctl.State())
}

func TestConcurrentDownloads(t *testing.T) {
	f := newFixture(t, password)
	ids := []domain.RecordingID{11, 12, 13, 14, 15, 16}
	f.seed(t, ids...)
	ctx := context.Background()
	require.NoError(t, f.ctl.Connect(ctx, hostAddr.String()))

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id domain.RecordingID) {
			defer wg.Done()
			_, err := f.ctl.Download(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		b, err := os.ReadFile(filepath.Join(f.downloads, strconv.FormatUint(uint64(id), 10)+".h264"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"+id.String()), b)
	}
}

func TestEndToEnd_HTTP(t *testing.T) {
	backend, err := log.NewWriter(io.Discard, "DEBUG")
	require.NoError(t, err)
	recordings := store.NewRecordingFileStore(t.TempDir())
	require.NoError(t, recordings.Put(context.Background(), 1700000000, []byte("thumb"), []byte("video")))
	svc := host.New(store.NewSessionStore(time.Minute), recordings,
		host.Policy{Password: password, SyncLimit: 25}, backend.GetLogger("host"))
	srv := httptest.NewServer(web.NewHandler(svc, backend.GetLogger("web")))
	defer srv.Close()

	ap := netip.MustParseAddrPort(srv.Listener.Addr().String())
	downloads := t.TempDir()
	ctl := client.New(web.Dialer{HTTP: srv.Client()}, book{ap.Addr(): password}, downloads, backend.GetLogger("client"))

	ctx := context.Background()
	require.NoError(t, ctl.Connect(ctx, ap.String()))
	require.Len(t, ctl.Recordings(), 1)

	path, err := ctl.Download(ctx, 1700000000)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("video"), b)
}
