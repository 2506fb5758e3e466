package config

import (
	"laptev/internal/log"
)

const defaultLogLevel = "NOTICE"

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stdout will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (l *Logging) validate() error {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	_, err := log.ParseLevel(l.Level)
	return err
}

// Backend opens the logging backend described by l.
func (l *Logging) Backend() (*log.Backend, error) {
	return log.New(l.File, l.Level, l.Disable)
}
