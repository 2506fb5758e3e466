package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptev/internal/log"
)

func TestSecret_TextRoundTrip(t *testing.T) {
	s := Secret{0, 1, 2, 0xff}
	b, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "AAEC/w==", string(b))

	var got Secret
	require.NoError(t, got.UnmarshalText(b))
	assert.Equal(t, s, got)
	assert.Error(t, got.UnmarshalText([]byte("!!!")))
	assert.Equal(t, "[4 byte secret]", s.String())
}

func TestLoadOrGenerateHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laptev-host.toml")

	c1, generated, err := LoadOrGenerateHost(path)
	require.NoError(t, err)
	require.True(t, generated)
	assert.Len(t, c1.Password, PasswordSize)
	assert.Equal(t, DefaultPort, c1.Port)
	assert.Equal(t, 30*time.Minute, c1.SessionLifetime())
	assert.Equal(t, 72*time.Hour, c1.Retention())
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultDataDir), c1.DataDir)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	c2, generated, err := LoadOrGenerateHost(path)
	require.NoError(t, err)
	require.False(t, generated)
	assert.Equal(t, c1.Password, c2.Password, "subsequent runs load the same password")
	assert.Equal(t, c1.StreamPort, c2.StreamPort)
	assert.Equal(t, c1.MaxAuthAttempts, c2.MaxAuthAttempts)
}

func TestLoadOrGenerateHost_MalformedIsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laptev-host.toml")
	require.NoError(t, os.WriteFile(path, []byte("Port = \"nope"), 0o600))

	_, _, err := LoadOrGenerateHost(path)
	require.Error(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Port = \"nope", string(b))
}

func TestLoadHost_Validation(t *testing.T) {
	_, err := LoadHost([]byte(`Port = 1`))
	require.ErrorContains(t, err, "Password")

	_, err = LoadHost([]byte("Password = \"AAAA\"\nPort = 70000"))
	require.ErrorContains(t, err, "Port")

	_, err = LoadHost([]byte("Password = \"AAAA\"\n[Logging]\nLevel = \"LOUD\""))
	require.Error(t, err)

	c, err := LoadHost([]byte("Password = \"AAAA\""))
	require.NoError(t, err)
	assert.Equal(t, DefaultSyncLimit, c.SyncLimit)
	assert.Equal(t, 0, c.StreamPort)
	assert.Equal(t, defaultLogLevel, c.Logging.Level)
}

func TestClient_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laptev.toml")

	c, err := LoadClientFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, c.PageSize)
	assert.Equal(t, TransportHTTP, c.Transport)
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "loading never writes")

	v4 := netip.MustParseAddr("192.168.1.20")
	v6 := netip.MustParseAddr("fe80::1")
	c.SetHost(v4, []byte("pw4"))
	c.SetHost(v6, []byte("pw6"))
	c.UTCOffsetMinutes = -90
	require.NoError(t, c.Save(path))

	c2, err := LoadClientFile(path)
	require.NoError(t, err)
	pw, ok := c2.Password(v4)
	require.True(t, ok)
	assert.Equal(t, []byte("pw4"), pw)
	pw, ok = c2.Password(netip.MustParseAddr("::ffff:192.168.1.20"))
	require.True(t, ok, "mapped addresses resolve to the IPv4 entry")
	assert.Equal(t, []byte("pw4"), pw)
	_, ok = c2.Password(v6)
	assert.True(t, ok)

	assert.True(t, c2.RemoveHost(v4))
	assert.False(t, c2.RemoveHost(v4))
	_, ok = c2.Password(v4)
	assert.False(t, ok)

	assert.Equal(t, "UTC-01:30", c2.Location().String())
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultDownloadDir), c2.DownloadPath(path))
}

func TestClient_Validation(t *testing.T) {
	_, err := LoadClient([]byte("[Hosts]\n\"not-an-ip\" = \"AAAA\""))
	require.Error(t, err)
	_, err = LoadClient([]byte(`Transport = "carrier-pigeon"`))
	require.Error(t, err)
	_, err = LoadClient([]byte(`UTCOffsetMinutes = 9999`))
	require.Error(t, err)
}

func TestWatchHost_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laptev-host.toml")
	c, _, err := LoadOrGenerateHost(path)
	require.NoError(t, err)

	backend, err := log.NewWriter(os.Stderr, "ERROR")
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		got *Host
	)
	w, err := WatchHost(path, backend.GetLogger("config"), func(h *Host) {
		mu.Lock()
		got = h
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Halt()

	// A broken edit is skipped.
	require.NoError(t, os.WriteFile(path, []byte("Port = ["), 0o600))
	time.Sleep(3 * settle)

	c.SyncLimit = 7
	c.DataDir = DefaultDataDir
	require.NoError(t, c.Save(path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.SyncLimit == 7
	}, 5*time.Second, 20*time.Millisecond)
}
