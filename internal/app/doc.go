// Package app wires the laptev binaries together.
//
// Host builds the host runtime from a config file: session and recording
// stores, the host service, both transports, the retention sweeper, the
// metrics listener and the config watcher. NewController builds the viewer's
// session controller from the viewer config. Nothing here is global; every
// component receives what it needs at construction.
package app
