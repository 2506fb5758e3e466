package app

import (
	"context"
	"io"
	"net"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptev/internal/client"
	"laptev/internal/config"
	"laptev/internal/domain"
	"laptev/internal/log"
)

func startHost(t *testing.T) (*Host, *config.Host) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "laptev-host.toml")
	cfg, _, err := config.LoadOrGenerateHost(path)
	require.NoError(t, err)

	backend, err := log.NewWriter(io.Discard, "DEBUG")
	require.NoError(t, err)

	httpLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	streamLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := NewHost(path, cfg, backend, WithListeners(httpLn, streamLn))
	require.NoError(t, h.Start())
	t.Cleanup(h.Shutdown)
	return h, cfg
}

func viewer(t *testing.T, transport string, hostAddr netip.Addr, pw []byte) *client.Controller {
	t.Helper()
	path := filepath.Join(t.TempDir(), "laptev.toml")
	cfg := config.DefaultClient()
	cfg.Transport = transport
	cfg.SetHost(hostAddr, pw)
	backend, err := log.NewWriter(io.Discard, "DEBUG")
	require.NoError(t, err)
	return NewController(path, cfg, backend)
}

func TestHost_BothTransports(t *testing.T) {
	h, cfg := startHost(t)
	ctx := context.Background()
	require.NoError(t, h.Recordings.Put(ctx, 1700000000, []byte("t"), []byte("v")))

	for transport, addr := range map[string]net.Addr{
		config.TransportHTTP:   h.HTTPAddr(),
		config.TransportStream: h.StreamAddr(),
	} {
		ap := netip.MustParseAddrPort(addr.String())
		ctl := viewer(t, transport, ap.Addr(), cfg.Password)
		require.NoError(t, ctl.Connect(ctx, ap.String()), transport)
		assert.Equal(t, client.Ready, ctl.State(), transport)
		require.Len(t, ctl.Recordings(), 1, transport)
		ctl.Disconnect()
	}
}

func TestHost_ApplyReload(t *testing.T) {
	h, cfg := startHost(t)
	ctx := context.Background()
	ap := netip.MustParseAddrPort(h.HTTPAddr().String())

	next := *cfg
	next.Password = config.Secret("rotated")
	h.apply(&next)

	old := viewer(t, config.TransportHTTP, ap.Addr(), cfg.Password)
	require.ErrorIs(t, old.Connect(ctx, ap.String()), domain.ErrAuthenticationFailed)
	rotated := viewer(t, config.TransportHTTP, ap.Addr(), []byte("rotated"))
	require.NoError(t, rotated.Connect(ctx, ap.String()))
}

func TestHost_ShutdownTwice(t *testing.T) {
	h, _ := startHost(t)
	done := make(chan struct{})
	go func() {
		h.Shutdown()
		h.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown hung")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LAPTEV_HOST_CONFIG", "/etc/laptev/host.toml")
	t.Setenv("LAPTEV_LOG_LEVEL", "DEBUG")
	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/etc/laptev/host.toml", e.HostConfig)
	assert.Equal(t, "DEBUG", e.LogLevel)
	assert.NotEmpty(t, e.ClientConfig)
}

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("LAPTEV_HOST_CONFIG", "")
	t.Setenv("LAPTEV_LOG_LEVEL", "")
	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "laptev-host.toml", e.HostConfig)
	assert.Empty(t, e.LogLevel)
}

func TestLoadEnv_BadLogLevel(t *testing.T) {
	t.Setenv("LAPTEV_LOG_LEVEL", "LOUD")
	_, err := LoadEnv()
	require.Error(t, err)
}
