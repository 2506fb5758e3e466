package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"

	"laptev/internal/log"
)

// Env holds the environment overrides shared by both binaries.
type Env struct {
	// HostConfig is the host config path.
	HostConfig string `env:"LAPTEV_HOST_CONFIG,default=laptev-host.toml"`
	// ClientConfig is the viewer config path; defaults to the user config dir.
	ClientConfig string `env:"LAPTEV_CONFIG"`
	// LogLevel overrides the configured log level.
	LogLevel string `env:"LAPTEV_LOG_LEVEL"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := envdecode.Decode(&e); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Env{}, fmt.Errorf("app: reading environment: %w", err)
	}
	if e.LogLevel != "" {
		if _, err := log.ParseLevel(e.LogLevel); err != nil {
			return Env{}, fmt.Errorf("app: LAPTEV_LOG_LEVEL: %w", err)
		}
	}
	if e.ClientConfig == "" {
		e.ClientConfig = defaultClientConfig()
	}
	return e, nil
}

func defaultClientConfig() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "laptev.toml"
	}
	return filepath.Join(dir, "laptev", "laptev.toml")
}
