package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"laptev/internal/store"
)

const (
	DefaultPort                 = 12675
	DefaultStreamPort           = 12676
	PasswordSize                = 128
	DefaultClientExpirationTime = 1800
	DefaultFileExpirationTime   = 259200
	DefaultSyncLimit            = 25
	DefaultMaxAuthAttempts      = 5
	DefaultDataDir              = "data"
)

// Host is the laptev-host configuration.
type Host struct {
	// Port is the HTTP listener port.
	Port int

	// StreamPort is the raw TCP listener port. 0 disables the listener.
	StreamPort int

	// Password is the pre-shared secret every viewer must prove.
	Password Secret

	// ClientExpirationTime is the session lifetime in seconds.
	ClientExpirationTime int64

	// FileExpirationTime is the recording retention period in seconds.
	FileExpirationTime int64

	// SyncLimit caps the entries returned by one synchronize.
	SyncLimit int

	// MaxAuthAttempts bounds failed password proofs per session. 0 means
	// unlimited.
	MaxAuthAttempts int

	// DataDir holds the recordings. Relative paths are resolved against
	// the directory of the config file.
	DataDir string

	// MetricsAddress is the Prometheus listen address, empty disables.
	MetricsAddress string

	Logging *Logging
}

// SessionLifetime returns ClientExpirationTime as a duration.
func (c *Host) SessionLifetime() time.Duration {
	return time.Duration(c.ClientExpirationTime) * time.Second
}

// Retention returns FileExpirationTime as a duration.
func (c *Host) Retention() time.Duration {
	return time.Duration(c.FileExpirationTime) * time.Second
}

// FixupAndValidate applies defaults to unset entries and validates the
// rest.
func (c *Host) FixupAndValidate() error {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ClientExpirationTime == 0 {
		c.ClientExpirationTime = DefaultClientExpirationTime
	}
	if c.FileExpirationTime == 0 {
		c.FileExpirationTime = DefaultFileExpirationTime
	}
	if c.SyncLimit == 0 {
		c.SyncLimit = DefaultSyncLimit
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Logging == nil {
		c.Logging = &Logging{}
	}

	if len(c.Password) == 0 {
		return errors.New("config: Host: Password is not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: Host: invalid Port %d", c.Port)
	}
	if c.StreamPort < 0 || c.StreamPort > 65535 {
		return fmt.Errorf("config: Host: invalid StreamPort %d", c.StreamPort)
	}
	if c.StreamPort == c.Port {
		return errors.New("config: Host: StreamPort collides with Port")
	}
	if c.ClientExpirationTime < 0 {
		return errors.New("config: Host: ClientExpirationTime is negative")
	}
	if c.FileExpirationTime < 0 {
		return errors.New("config: Host: FileExpirationTime is negative")
	}
	if c.SyncLimit < 0 {
		return errors.New("config: Host: SyncLimit is negative")
	}
	if c.MaxAuthAttempts < 0 {
		return errors.New("config: Host: MaxAuthAttempts is negative")
	}
	return c.Logging.validate()
}

// GenerateHost returns a fresh host configuration with a random password.
func GenerateHost() (*Host, error) {
	pw, err := RandomSecret(PasswordSize)
	if err != nil {
		return nil, err
	}
	c := &Host{
		Port:                 DefaultPort,
		StreamPort:           DefaultStreamPort,
		Password:             pw,
		ClientExpirationTime: DefaultClientExpirationTime,
		FileExpirationTime:   DefaultFileExpirationTime,
		SyncLimit:            DefaultSyncLimit,
		MaxAuthAttempts:      DefaultMaxAuthAttempts,
		DataDir:              DefaultDataDir,
		Logging:              &Logging{Level: defaultLogLevel},
	}
	return c, c.FixupAndValidate()
}

// LoadHost parses and validates b as a host config file body.
func LoadHost(b []byte) (*Host, error) {
	if b == nil {
		return nil, errors.New("config: no nil buffer as config file")
	}
	c := new(Host)
	if _, err := toml.Decode(string(b), c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.FixupAndValidate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadHostFile loads, parses and validates the host config at path.
func LoadHostFile(path string) (*Host, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := LoadHost(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.resolve(path)
	return c, nil
}

// LoadOrGenerateHost loads the host config at path, or generates and
// persists one if the file does not exist. A file that exists but does not
// parse is an error and is left untouched. The boolean reports generation.
func LoadOrGenerateHost(path string) (*Host, bool, error) {
	c, err := LoadHostFile(path)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	if c, err = GenerateHost(); err != nil {
		return nil, false, err
	}
	if err := c.Save(path); err != nil {
		return nil, false, err
	}
	c.resolve(path)
	return c, true, nil
}

// Save writes c to path atomically with owner-only permissions.
func (c *Host) Save(path string) error {
	return save(path, c)
}

func (c *Host) resolve(path string) {
	if !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Join(filepath.Dir(path), c.DataDir)
	}
	if c.Logging.File != "" && !filepath.IsAbs(c.Logging.File) {
		c.Logging.File = filepath.Join(filepath.Dir(path), c.Logging.File)
	}
}

func save(path string, v any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("config: encoding %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return store.WriteFileAtomic(path, buf.Bytes(), 0o600)
}
